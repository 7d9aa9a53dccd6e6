// Package security checks how the cloud credential is stored and keeps it
// out of diagnostics output.
package security

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvCloudKey is the environment variable that supplies the cloud API key.
const EnvCloudKey = "GEMINI_API_KEY"

// ErrLoosePermissions is returned when a file holding a credential is
// readable by other users.
var ErrLoosePermissions = errors.New("credential file is readable by other users")

// CredentialSource describes where the cloud key came from.
type CredentialSource string

const (
	SourceNone CredentialSource = "none"
	SourceEnv  CredentialSource = "env"
	SourceFile CredentialSource = "file"
)

// KeySource reports whether the cloud key is supplied by the environment,
// by a config file, or not at all.
func KeySource(fileKey string) CredentialSource {
	if strings.TrimSpace(os.Getenv(EnvCloudKey)) != "" {
		return SourceEnv
	}
	if strings.TrimSpace(fileKey) != "" {
		return SourceFile
	}
	return SourceNone
}

// CheckFilePermissions fails when path grants any group or other access.
func CheckFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("%w: %s has mode %04o (want 0600)", ErrLoosePermissions, path, perm)
	}
	return nil
}

// MaskCredential shows only the first and last three characters.
func MaskCredential(value string) string {
	if len(value) < 8 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}
