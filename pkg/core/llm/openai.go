package llm

import (
	"context"
	"os"
	"time"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider implements Provider against the OpenAI chat-completions API.
type OpenAIProvider struct {
	Model string // e.g. "gpt-4o-mini"
}

var _ Provider = (*OpenAIProvider)(nil)

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", &ProviderError{Provider: "openai", Kind: ErrKindAuth, Err: errMissingKey("OPENAI_API_KEY")}
	}

	model := p.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	req := chatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   4096,
	}
	if wantsJSON(options) {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	timeout, _ := options["timeout"].(time.Duration)
	return postChatCompletion(ctx, "openai", openAIEndpoint, apiKey, req, timeout)
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}
