package llm

import (
	"context"
	"os"
	"time"
)

const deepSeekEndpoint = "https://api.deepseek.com/chat/completions"

// DeepSeekProvider implements Provider against the DeepSeek chat API,
// which is wire-compatible with OpenAI chat completions.
type DeepSeekProvider struct {
	Model string // e.g. "deepseek-chat"
}

var _ Provider = (*DeepSeekProvider)(nil)

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", &ProviderError{Provider: "deepseek", Kind: ErrKindAuth, Err: errMissingKey("DEEPSEEK_API_KEY")}
	}

	model := p.Model
	if model == "" {
		model = "deepseek-chat"
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
	return postChatCompletion(ctx, "deepseek", deepSeekEndpoint, apiKey, req, timeout)
}

// AdaptInstructions prepends a brevity hint; DeepSeek tends to narrate its
// reasoning unless told not to.
func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw + "\nAnswer directly without narrating your reasoning."
}
