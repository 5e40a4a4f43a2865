package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/metrics"
)

// maxResponseBody bounds how much of a completion response is read
const maxResponseBody = 4 << 20

// LLMConfig configures the chat-completions client
type LLMConfig struct {
	// BaseURL is the provider API root; "/chat/completions" is appended.
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature *float64
	// AppURL and AppName are sent as OpenRouter attribution headers when set.
	AppURL  string
	AppName string
}

// LLMService sends prompts to an OpenAI-compatible chat-completions endpoint
type LLMService struct {
	cfg    LLMConfig
	client *http.Client
	log    zerolog.Logger
}

// Ensure LLMService implements Completer
var _ Completer = (*LLMService)(nil)

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key must be set")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("LLM base URL must be set")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("LLM model must be set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &LLMService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logging.With("llm"),
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completions request
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type completionEnvelope struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as the user message and returns the first choice's content
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	content, err := s.complete(ctx, prompt)
	metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())
	metrics.LLMRequestsTotal.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		s.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Str("model", s.cfg.Model).Msg("completion failed")
		return "", err
	}
	s.log.Debug().Dur("elapsed", time.Since(start)).Int("content_bytes", len(content)).Msg("completion received")
	return content, nil
}

func (s *LLMService) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := Request{
		Model: s.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: s.cfg.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	if s.cfg.AppURL != "" {
		req.Header.Set("HTTP-Referer", s.cfg.AppURL)
	}
	if s.cfg.AppName != "" {
		req.Header.Set("X-Title", s.cfg.AppName)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", s.transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       s.scrub(body),
		}
	}

	var envelope completionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &UpstreamError{Kind: KindMalformedEnvelope, StatusCode: resp.StatusCode, Body: s.scrub(body), Err: err}
	}
	if len(envelope.Choices) == 0 {
		return "", &UpstreamError{Kind: KindMalformedEnvelope, StatusCode: resp.StatusCode, Body: s.scrub(body), Err: errors.New("no choices in response")}
	}
	content := envelope.Choices[0].Message.Content
	if content == nil || *content == "" {
		return "", &UpstreamError{Kind: KindMalformedEnvelope, StatusCode: resp.StatusCode, Body: s.scrub(body), Err: errors.New("empty completion content")}
	}

	return *content, nil
}

// transportError maps a failed round trip to ErrTimeout or a transport UpstreamError
func (s *LLMService) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, s.cfg.Timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w after %s", ErrTimeout, s.cfg.Timeout)
	}
	// url.Error carries method and URL only; the credential lives in a header
	return &UpstreamError{Kind: KindTransport, Err: err}
}

// scrub truncates b for diagnostics and removes the API key if the provider echoed it
func (s *LLMService) scrub(b []byte) string {
	text := string(b)
	if s.cfg.APIKey != "" {
		text = strings.ReplaceAll(text, s.cfg.APIKey, "[REDACTED]")
	}
	if len(text) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}
