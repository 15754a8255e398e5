package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiCompleter calls Gemini through the genai SDK.
type GeminiCompleter struct {
	client *genai.Client
}

// NewGeminiCompleter creates a genai client. With an empty apiKey the SDK
// falls back to its environment configuration (GOOGLE_API_KEY or Vertex AI
// project settings).
func NewGeminiCompleter(ctx context.Context, apiKey string) (*GeminiCompleter, error) {
	cfg := &genai.ClientConfig{}
	if apiKey != "" {
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewGeminiCompleter: create genai client: %w", err)
	}
	return &GeminiCompleter{client: client}, nil
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		MaxOutputTokens:  req.MaxOutputTokens,
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.User), cfg)
	if err != nil {
		return "", fmt.Errorf("GeminiCompleter.Complete: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GeminiCompleter.Complete: %w", ErrEmptyResponse)
	}
	return text, nil
}
