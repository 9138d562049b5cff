package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"orderledger/internal/config"
)

// GeminiClient classifies through the Gemini API with temperature 0.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
	limiter   *RateLimiter
}

func NewGeminiClient(ctx context.Context, cfg config.Config) (*GeminiClient, error) {
	if err := cfg.Require("GEMINI_API_KEY", cfg.GeminiAPIKey); err != nil {
		return nil, err
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{
		client:    client,
		model:     cfg.GeminiModel,
		maxTokens: int32(cfg.ClassifierMaxTokens),
		limiter:   NewRateLimiter(cfg.ClassifierRateLimitRPS),
	}, nil
}

func (c *GeminiClient) Classify(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.WaitTurn(ctx); err != nil {
		return "", err
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
