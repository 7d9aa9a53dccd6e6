// localserver.go implements the Provider interface for a local Ollama server.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultLocalServerHost    = "http://localhost:11434"
	DefaultLocalServerModel   = "llama3"
	DefaultLocalServerTimeout = 2 * time.Minute

	// MissingResponseText is returned when the server answers without a "response" field.
	MissingResponseText = "No response field found in local server output."

	generatePath           = "/api/generate"
	maxResponseBytes       = 8 << 20
	maxErrorBodyExcerpt    = 200
	localServerErrorPrefix = "An error occurred with the local-server provider: "
)

// LocalServerConfig is the "local_server" config section.
type LocalServerConfig struct {
	Host    string        `option:"host" validate:"omitempty,url"`
	Model   string        `option:"model"`
	Timeout time.Duration `option:"timeout" validate:"gte=0"`
}

// LocalServer sends prompts to the /api/generate endpoint of a local server.
type LocalServer struct {
	client   *http.Client
	host     string
	model    string
	endpoint string
	timeout  time.Duration
}

// LocalServerOption configures a LocalServer provider.
type LocalServerOption func(*LocalServer)

// WithLocalServerHTTPClient sets the HTTP client (for testing).
// The client's own Timeout is left untouched.
func WithLocalServerHTTPClient(c *http.Client) LocalServerOption {
	return func(s *LocalServer) {
		s.client = c
	}
}

// NewLocalServer creates a local-server provider, filling unset fields with defaults.
func NewLocalServer(cfg LocalServerConfig, opts ...LocalServerOption) *LocalServer {
	s := &LocalServer{
		host:    DefaultLocalServerHost,
		model:   DefaultLocalServerModel,
		timeout: DefaultLocalServerTimeout,
	}
	if cfg.Host != "" {
		s.host = strings.TrimRight(cfg.Host, "/")
	}
	if cfg.Model != "" {
		s.model = cfg.Model
	}
	if cfg.Timeout > 0 {
		s.timeout = cfg.Timeout
	}
	s.endpoint = s.host + generatePath
	s.client = &http.Client{Timeout: s.timeout}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "local-server".
func (s *LocalServer) Name() string {
	return KindLocalServer
}

// Host returns the configured server base address.
func (s *LocalServer) Host() string {
	return s.host
}

// Model returns the model identifier sent with each request.
func (s *LocalServer) Model() string {
	return s.model
}

// Endpoint returns the full generate URL.
func (s *LocalServer) Endpoint() string {
	return s.endpoint
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// Assist posts the prompt with streaming disabled and returns the "response"
// field of the single JSON object the server sends back.
func (s *LocalServer) Assist(ctx context.Context, prompt string) string {
	call := startCall(s.Name(), s.model)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		kind := classify(err)
		call.fail(kind, err)
		return s.describe(kind, err)
	}

	call.done()
	return answer
}

func (s *LocalServer) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{
			Code: resp.StatusCode,
			Body: truncate(strings.TrimSpace(string(data)), maxErrorBodyExcerpt),
		}
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &DecodeError{Err: err}
	}
	if out.Response == nil {
		return MissingResponseText, nil
	}
	return *out.Response, nil
}

// describe renders a user-facing message for a failed call.
func (s *LocalServer) describe(kind FailureKind, err error) string {
	switch kind {
	case FailureConnection:
		return fmt.Sprintf("Error: Could not connect to the local server at %s. Is it running?", s.host)
	case FailureTimeout:
		return fmt.Sprintf("Error: The local server at %s did not respond within %s.", s.host, s.timeout)
	default:
		return localServerErrorPrefix + unwrapURLError(err).Error()
	}
}
