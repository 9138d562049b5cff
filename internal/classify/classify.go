// Package classify holds the text-classification adapters used to resolve product names.
package classify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"orderledger/internal/config"
	"orderledger/internal/pipeline"
)

// New builds the classifier selected by CLASSIFIER_PROVIDER.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (pipeline.Classifier, error) {
	switch cfg.ClassifierProvider {
	case config.ProviderOpenAI:
		if err := cfg.Require("OPENAI_API_KEY", cfg.OpenAIAPIKey); err != nil {
			return nil, err
		}
		return NewOpenAIClient(cfg, log), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.ClassifierProvider)
	}
}
