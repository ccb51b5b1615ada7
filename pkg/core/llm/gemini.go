package llm

import (
	"context"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface using Google's GenAI SDK.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash-exp"
}

var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request to the Gemini API.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", &ProviderError{Provider: "gemini", Kind: ErrKindAuth, Err: errMissingKey("GEMINI_API_KEY")}
	}

	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	if d, ok := options["timeout"].(time.Duration); ok && d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &ProviderError{Provider: "gemini", Kind: ErrKindTransport, Err: err}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	if wantsJSON(options) {
		config.ResponseMIMEType = "application/json"
	}

	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		kind := ErrKindTransport
		if ctx.Err() == context.DeadlineExceeded {
			kind = ErrKindTimeout
		}
		return "", &ProviderError{Provider: "gemini", Kind: kind, Err: err}
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ProviderError{Provider: "gemini", Kind: ErrKindMalformed, Err: errEmptyResponse}
	}

	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
