package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLM(t *testing.T, url string, mutate ...func(*LLMConfig)) *LLMService {
	t.Helper()
	cfg := LLMConfig{
		BaseURL: url,
		APIKey:  "sk-test-secret",
		Model:   "test/model",
		Timeout: 2 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	svc, err := NewLLMService(cfg)
	require.NoError(t, err)
	return svc
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestNewLLMService(t *testing.T) {
	t.Run("requires key, url and model", func(t *testing.T) {
		for _, cfg := range []LLMConfig{
			{BaseURL: "http://x", Model: "m"},
			{APIKey: "k", Model: "m"},
			{APIKey: "k", BaseURL: "http://x"},
		} {
			svc, err := NewLLMService(cfg)
			assert.Error(t, err)
			assert.Nil(t, svc)
		}
	})

	t.Run("defaults timeout and trims url", func(t *testing.T) {
		svc, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: "http://x/api/", Model: "m"})
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, svc.cfg.Timeout)
		assert.Equal(t, "http://x/api", svc.cfg.BaseURL)
	})
}

func TestLLMService_Complete(t *testing.T) {
	t.Run("sends request and returns first choice", func(t *testing.T) {
		temp := 0.3
		var got Request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test-secret", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "https://example.org", r.Header.Get("HTTP-Referer"))
			assert.Equal(t, "ai-book", r.Header.Get("X-Title"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = io.WriteString(w, completionBody(`[{"title":"Dune"}]`))
		}))
		defer server.Close()

		svc := newTestLLM(t, server.URL+"/v1", func(c *LLMConfig) {
			c.Temperature = &temp
			c.AppURL = "https://example.org"
			c.AppName = "ai-book"
		})

		content, err := svc.Complete(context.Background(), "recommend please")

		require.NoError(t, err)
		assert.Equal(t, `[{"title":"Dune"}]`, content)
		assert.Equal(t, "test/model", got.Model)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, SystemInstruction, got.Messages[0].Content)
		assert.Equal(t, "user", got.Messages[1].Role)
		assert.Equal(t, "recommend please", got.Messages[1].Content)
		require.NotNil(t, got.Temperature)
		assert.InDelta(t, 0.3, *got.Temperature, 1e-9)
	})

	t.Run("omits optional fields when unset", func(t *testing.T) {
		var raw map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("HTTP-Referer"))
			assert.Empty(t, r.Header.Get("X-Title"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
			_, _ = io.WriteString(w, completionBody("ok"))
		}))
		defer server.Close()

		_, err := newTestLLM(t, server.URL).Complete(context.Background(), "p")

		require.NoError(t, err)
		assert.NotContains(t, raw, "temperature")
	})

	t.Run("non-2xx is an upstream status error with scrubbed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid key sk-test-secret"}`)
		}))
		defer server.Close()

		_, err := newTestLLM(t, server.URL).Complete(context.Background(), "p")

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, KindStatus, upstream.Kind)
		assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
		assert.NotContains(t, err.Error(), "sk-test-secret")
		assert.Contains(t, err.Error(), "[REDACTED]")
		assert.Contains(t, err.Error(), "LLM HTTP 401")
	})

	t.Run("long error bodies are truncated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, strings.Repeat("x", 2000))
		}))
		defer server.Close()

		_, err := newTestLLM(t, server.URL).Complete(context.Background(), "p")

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
		assert.Len(t, upstream.Body, maxErrorBody+len("..."))
	})

	t.Run("truncation keeps multi-byte runes whole", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			// the odd prefix puts the byte limit inside a two-byte rune
			_, _ = io.WriteString(w, "x"+strings.Repeat("ж", 400))
		}))
		defer server.Close()

		_, err := newTestLLM(t, server.URL).Complete(context.Background(), "p")

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.True(t, utf8.ValidString(upstream.Body))
		assert.Equal(t, "x"+strings.Repeat("ж", (maxErrorBody-2)/2)+"...", upstream.Body)
	})

	envelopes := map[string]string{
		"invalid json":  `not json`,
		"no choices":    `{"choices":[]}`,
		"null content":  `{"choices":[{"message":{"content":null}}]}`,
		"empty content": `{"choices":[{"message":{"content":""}}]}`,
		"missing field": `{"id":"x"}`,
	}
	for name, body := range envelopes {
		t.Run("malformed envelope: "+name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer server.Close()

			_, err := newTestLLM(t, server.URL).Complete(context.Background(), "p")

			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, KindMalformedEnvelope, upstream.Kind)
			assert.Equal(t, http.StatusOK, upstream.StatusCode)
		})
	}

	t.Run("slow provider times out", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()

		svc := newTestLLM(t, server.URL, func(c *LLMConfig) { c.Timeout = 50 * time.Millisecond })

		start := time.Now()
		_, err := svc.Complete(context.Background(), "p")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
		var upstream *UpstreamError
		assert.False(t, errors.As(err, &upstream))
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("unreachable provider is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestLLM(t, url).Complete(context.Background(), "p")

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, KindTransport, upstream.Kind)
		assert.NotContains(t, err.Error(), "sk-test-secret")
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "timeout", outcome(ErrTimeout))
	assert.Equal(t, "status", outcome(&UpstreamError{Kind: KindStatus, StatusCode: 500}))
	assert.Equal(t, "unavailable", outcome(&UpstreamError{Kind: KindUnavailable}))
	assert.Equal(t, "transport", outcome(errors.New("boom")))
}
