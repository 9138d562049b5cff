package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"orderledger/internal/config"
)

// OpenAIClient calls the Chat Completions endpoint with deterministic settings.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
	limiter     *RateLimiter
	log         *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenAIClient(cfg config.Config, log *zap.Logger) *OpenAIClient {
	if log == nil {
		log = zap.NewNop()
	}
	attempts := cfg.ClassifierMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &OpenAIClient{
		apiKey:      cfg.OpenAIAPIKey,
		baseURL:     strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:       cfg.OpenAIModel,
		maxTokens:   cfg.ClassifierMaxTokens,
		maxAttempts: attempts,
		backoff:     250 * time.Millisecond,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.ClassifierTimeoutMs) * time.Millisecond},
		limiter:     NewRateLimiter(cfg.ClassifierRateLimitRPS),
		log:         log,
	}
}

func (c *OpenAIClient) Classify(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("missing OPENAI_API_KEY")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "system", Content: prompt}},
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.backoff*time.Duration(1<<(attempt-2))+time.Duration(rand.Intn(50))*time.Millisecond); err != nil {
				return "", err
			}
		}
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return "", err
		}

		answer, retry, err := c.do(ctx, body)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if !retry {
			return "", err
		}
		c.log.Debug("openai retry", zap.Int("attempt", attempt), zap.Error(err))
	}
	return "", fmt.Errorf("openai: attempts exhausted: %w", lastErr)
}

func (c *OpenAIClient) do(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, err
	}
	blob, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", isRetryableStatus(resp.StatusCode), fmt.Errorf("openai status=%d body=%s", resp.StatusCode, string(blob))
	}

	var parsed chatResponse
	if err := json.Unmarshal(blob, &parsed); err != nil {
		return "", false, fmt.Errorf("openai response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, errors.New("openai returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), false, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
