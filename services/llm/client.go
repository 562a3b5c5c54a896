package llm

import (
	"context"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
)

type GenerationParams struct {
	Temperature *float64 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float64 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
}

// ModelClient defines the standard interface for any model-invocation backend.
type ModelClient interface {
	Invoke(ctx context.Context, modelID string, prompt string, params GenerationParams) (*datatypes.ModelResponse, error)
}
