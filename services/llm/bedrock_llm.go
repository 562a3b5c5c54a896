package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
)

const defaultRegion = "us-east-1"

// --- Client Implementation ---

// BedrockClient speaks the Bedrock runtime invoke-model REST API. The request
// body is the Anthropic messages payload tagged with the bedrock protocol
// version; the response is one or more content blocks.
type BedrockClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func NewBedrockClient() (*BedrockClient, error) {
	endpoint := os.Getenv("BEDROCK_ENDPOINT")
	if endpoint == "" {
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = defaultRegion
			slog.Warn("AWS_REGION not set, defaulting to", "region", region)
		}
		endpoint = fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", region)
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	// Deployments fronting Bedrock with an access gateway authenticate with a
	// bearer key instead of SigV4.
	apiKey := os.Getenv("BEDROCK_API_KEY")
	if apiKey == "" {
		secretPath := "/run/secrets/bedrock_api_key"
		if content, err := os.ReadFile(secretPath); err == nil {
			apiKey = strings.TrimSpace(string(content))
			slog.Info("Read Bedrock API Key from Podman Secrets")
		}
	}

	return &BedrockClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}, nil
}

// Invoke implements the ModelClient interface.
func (b *BedrockClient) Invoke(ctx context.Context, modelID string, prompt string, params GenerationParams) (*datatypes.ModelResponse, error) {
	temperature := float64(datatypes.DefaultTemperature)
	if params.Temperature != nil {
		temperature = *params.Temperature
	}
	topP := float64(datatypes.DefaultTopP)
	if params.TopP != nil {
		topP = *params.TopP
	}
	topK := datatypes.DefaultTopK
	if params.TopK != nil {
		topK = *params.TopK
	}
	maxTokens := datatypes.DefaultMaxTokens
	if params.MaxTokens != nil {
		maxTokens = *params.MaxTokens
	}

	payload := datatypes.NewInvocationPayload(prompt, temperature, topP, topK, maxTokens)

	reqBodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	invokeURL := fmt.Sprintf("%s/model/%s/invoke", b.endpoint, url.PathEscape(modelID))
	req, err := http.NewRequestWithContext(ctx, "POST", invokeURL, bytes.NewBuffer(reqBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("authorization", "Bearer "+b.apiKey)
	}

	slog.Debug("Sending REST request to Bedrock runtime", "model", modelID)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bedrock runtime returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp datatypes.ModelResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	if apiResp.Error != nil {
		return nil, fmt.Errorf("bedrock runtime error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("received empty content from Bedrock runtime")
	}

	return &apiResp, nil
}
