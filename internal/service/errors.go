package service

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout means the LLM did not answer within the configured bound. Retryable.
	ErrTimeout = errors.New("llm request timed out")

	// ErrNotFound is returned by the profile and quiz stores for unknown users.
	ErrNotFound = errors.New("not found")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// UpstreamErrorKind classifies an UpstreamError
type UpstreamErrorKind string

const (
	KindStatus            UpstreamErrorKind = "status"
	KindMalformedEnvelope UpstreamErrorKind = "malformed_envelope"
	KindTransport         UpstreamErrorKind = "transport"
	KindUnavailable       UpstreamErrorKind = "unavailable"
)

// maxErrorBody bounds the response body kept for diagnostics
const maxErrorBody = 400

// UpstreamError means the provider was reachable (or deliberately skipped) but did not
// produce a usable completion. Body is truncated and scrubbed of credentials.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("LLM HTTP %d: %s", e.StatusCode, e.Body)
	case KindMalformedEnvelope:
		if e.Body != "" {
			return fmt.Sprintf("LLM bad response envelope: %s", e.Body)
		}
		return "LLM bad response envelope"
	case KindUnavailable:
		return fmt.Sprintf("LLM unavailable: %v", e.Err)
	default:
		return fmt.Sprintf("LLM request failed: %v", e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// outcome labels err for metrics
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, ErrTimeout) {
		return "timeout"
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return string(upstream.Kind)
	}
	return "transport"
}
