package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// FailureKind classifies a call-time failure.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureConnection
	FailureTimeout
	FailureStatus
	FailureDecode
	FailureRequest
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureConnection:
		return "connection"
	case FailureTimeout:
		return "timeout"
	case FailureStatus:
		return "status"
	case FailureDecode:
		return "decode"
	case FailureRequest:
		return "request"
	default:
		return "unknown"
	}
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// DecodeError reports a response body that could not be parsed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// classify maps a transport error to its failure class.
// Timeouts are checked before connection errors since a dial timeout is both.
func classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return FailureStatus
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return FailureDecode
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return FailureConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return FailureConnection
	}

	return FailureRequest
}

// unwrapURLError strips the *url.Error wrapper so messages do not repeat the
// method and endpoint.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// truncate shortens s to at most n bytes, marking the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
