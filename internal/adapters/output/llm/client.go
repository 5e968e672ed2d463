package llm

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

	"appliancebot/configs"
	"appliancebot/internal/domain"
	"appliancebot/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure ClientAdapter implements LLMClient
var _ output.LLMClient = (*ClientAdapter)(nil)

// ClientAdapter struct - Output adapter for an OpenAI-compatible
// chat-completions endpoint, used as the opaque language-generation
// capability behind the fallback handler.
type ClientAdapter struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewClientAdapter func - Creates new language model client adapter
func NewClientAdapter(config configs.LLM) (*ClientAdapter, error) {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}
	if config.Model == "" {
		return nil, fmt.Errorf("llm model is not configured")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 60 * time.Second
	}

	adapter := &ClientAdapter{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: baseURL,
		model:   config.Model,
	}

	logrus.Infof("LLM client adapter initialized with base URL: %s, model: %s, timeout: %v", baseURL, config.Model, timeout)

	return adapter, nil
}

// Retry configuration constants
const (
	maxRetryAttempts = 3
	initialDelay     = 1 * time.Second
	maxDelay         = 8 * time.Second
)

type chatMessageAPI struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionAPIRequest struct {
	Model    string           `json:"model"`
	Messages []chatMessageAPI `json:"messages"`
	Stream   bool             `json:"stream"`
}

type chatCompletionAPIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends one non-streaming chat completion request built from the
// system prompt, the conversation history and the current user turn.
func (a *ClientAdapter) Generate(ctx context.Context, systemPrompt string, history []domain.ChatMessage, userText string) (string, error) {
	messages := make([]chatMessageAPI, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, chatMessageAPI{Role: "system", Content: systemPrompt})
	}
	for _, msg := range history {
		messages = append(messages, chatMessageAPI{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, chatMessageAPI{Role: "user", Content: userText})

	body, err := json.Marshal(chatCompletionAPIRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrGenerationFailed, err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", a.baseURL)

	resp, err := a.doWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return a.httpClient.Do(req)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatCompletionAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", domain.ErrGenerationFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrGenerationFailed)
	}

	return parsed.Choices[0].Message.Content, nil
}

// doWithBackoff executes the request with bounded exponential backoff.
// 4xx responses fail immediately; network failures and 5xx responses are
// retried.
func (a *ClientAdapter) doWithBackoff(ctx context.Context, operation func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		resp, err := operation()

		switch {
		case err != nil:
			if !isTransientError(err) {
				return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
			}
			lastErr = err
			logrus.Warnf("LLM request attempt %d/%d failed: %v, retrying in %v", attempt, maxRetryAttempts, err, delay)

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d - %s", domain.ErrGenerationFailed, resp.StatusCode, string(body))

		default:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: status %d - %s", resp.StatusCode, string(body))
			logrus.Warnf("LLM request attempt %d/%d failed with status %d, retrying in %v", attempt, maxRetryAttempts, resp.StatusCode, delay)
		}

		if attempt < maxRetryAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}

	return nil, fmt.Errorf("%w: %v after %d attempts", domain.ErrGenerationFailed, lastErr, maxRetryAttempts)
}

// isTransientError determines if an error should be retried
func isTransientError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "no such host", "network is unreachable", "i/o timeout", "eof"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
