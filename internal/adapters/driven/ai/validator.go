package ai

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/retry"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before they are saved by creating
// the service once, without retries, and pinging it.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the embedding provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(config, retry.Policy{})
	if err != nil {
		return err
	}
	return pingOnce(svc)
}

// ValidateLLM pings the LLM provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(config, retry.Policy{})
	if err != nil {
		return err
	}
	return pingOnce(svc)
}

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

func pingOnce(svc pinger) error {
	defer svc.Close()
	return ping(context.Background(), svc.Ping)
}
