package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pageza/ai-book/backend/internal/logging"
)

// BreakerConfig configures BreakerCompleter
type BreakerConfig struct {
	Name string
	// FailureThreshold consecutive failures open the breaker. Zero means 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a probe. Zero means 30s.
	OpenTimeout time.Duration
}

// BreakerCompleter fails fast while the provider is persistently failing.
// It never retries; one call in means at most one upstream request.
type BreakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[string]
}

var _ Completer = (*BreakerCompleter)(nil)

// NewBreakerCompleter wraps next with a circuit breaker
func NewBreakerCompleter(next Completer, cfg BreakerConfig) *BreakerCompleter {
	if cfg.Name == "" {
		cfg.Name = "llm"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	log := logging.With("breaker")
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
		IsSuccessful: countsAsSuccess,
	}

	return &BreakerCompleter{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Complete forwards to the wrapped Completer unless the breaker is open
func (b *BreakerCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	content, err := b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &UpstreamError{Kind: KindUnavailable, Err: err}
	}
	return content, err
}

// State exposes the breaker state for health reporting
func (b *BreakerCompleter) State() string {
	return b.cb.State().String()
}

// countsAsSuccess keeps client-side mistakes and caller cancellation from tripping the breaker
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Kind == KindStatus {
		return upstream.StatusCode < 500 && upstream.StatusCode != http.StatusTooManyRequests
	}
	return false
}
