package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider calls the Gemini API through the genai SDK.
type GeminiProvider struct {
	modelName string
	gClient   *genai.Client
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{modelName: modelName, gClient: gClient}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

// Generate sends a single-turn prompt.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := g.gClient.Models.GenerateContent(ctx, g.modelName, contents, geminiConfig(opts))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", geminiError(err))
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// geminiError turns SDK API errors into *HTTPError so the status code
// drives retry decisions.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		body := apiErr.Message
		if apiErr.Status != "" {
			body = apiErr.Status + ": " + body
		}
		return &HTTPError{Provider: "gemini", StatusCode: apiErr.Code, Body: body}
	}
	return err
}

func geminiConfig(opts Options) *genai.GenerateContentConfig {
	if opts.MaxTokens <= 0 && opts.Temperature <= 0 && opts.Schema == nil && !opts.JSON {
		return nil
	}
	config := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.JSON || opts.Schema != nil {
		config.ResponseMIMEType = "application/json"
	}
	if opts.Schema != nil {
		config.ResponseSchema = opts.Schema
	}
	return config
}
