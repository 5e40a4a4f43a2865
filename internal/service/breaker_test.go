package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBreakerCompleter(t *testing.T) {
	ctx := context.Background()

	t.Run("passes results through", func(t *testing.T) {
		next := new(mockCompleter)
		next.On("Complete", ctx, "p").Return("content", nil).Once()

		b := NewBreakerCompleter(next, BreakerConfig{})
		content, err := b.Complete(ctx, "p")

		require.NoError(t, err)
		assert.Equal(t, "content", content)
		assert.Equal(t, "closed", b.State())
		next.AssertExpectations(t)
	})

	t.Run("opens after consecutive failures and fails fast", func(t *testing.T) {
		next := new(mockCompleter)
		boom := &UpstreamError{Kind: KindStatus, StatusCode: http.StatusBadGateway}
		next.On("Complete", ctx, "p").Return("", boom).Times(2)

		b := NewBreakerCompleter(next, BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute})
		for i := 0; i < 2; i++ {
			_, err := b.Complete(ctx, "p")
			assert.ErrorIs(t, err, boom)
		}
		assert.Equal(t, "open", b.State())

		_, err := b.Complete(ctx, "p")
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, KindUnavailable, upstream.Kind)
		next.AssertNumberOfCalls(t, "Complete", 2)
	})

	t.Run("timeouts count as failures", func(t *testing.T) {
		next := new(mockCompleter)
		next.On("Complete", ctx, "p").Return("", ErrTimeout)

		b := NewBreakerCompleter(next, BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})
		_, err := b.Complete(ctx, "p")

		assert.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, "open", b.State())
	})

	t.Run("client errors and cancellation do not trip", func(t *testing.T) {
		next := new(mockCompleter)
		next.On("Complete", ctx, "bad").Return("", &UpstreamError{Kind: KindStatus, StatusCode: http.StatusBadRequest})
		next.On("Complete", ctx, "gone").Return("", &UpstreamError{Kind: KindTransport, Err: context.Canceled})

		b := NewBreakerCompleter(next, BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})
		_, _ = b.Complete(ctx, "bad")
		_, _ = b.Complete(ctx, "gone")

		assert.Equal(t, "closed", b.State())
	})

	t.Run("rate limiting by the provider trips", func(t *testing.T) {
		next := new(mockCompleter)
		next.On("Complete", mock.Anything, mock.Anything).Return("", &UpstreamError{Kind: KindStatus, StatusCode: http.StatusTooManyRequests})

		b := NewBreakerCompleter(next, BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})
		_, err := b.Complete(ctx, "p")

		var upstream *UpstreamError
		assert.ErrorAs(t, err, &upstream)
		assert.Equal(t, "open", b.State())
	})
}

func TestCountsAsSuccess(t *testing.T) {
	assert.True(t, countsAsSuccess(nil))
	assert.True(t, countsAsSuccess(context.Canceled))
	assert.True(t, countsAsSuccess(&UpstreamError{Kind: KindStatus, StatusCode: http.StatusNotFound}))
	assert.False(t, countsAsSuccess(&UpstreamError{Kind: KindStatus, StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, countsAsSuccess(&UpstreamError{Kind: KindMalformedEnvelope}))
	assert.False(t, countsAsSuccess(errors.New("boom")))
}
