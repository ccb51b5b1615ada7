// Package llm abstracts the language-model providers used by the analysis
// stages. Providers are interchangeable behind the Provider interface; the
// pipeline never talks to a vendor SDK directly.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Failure categories surfaced by providers.
const (
	ErrKindAuth      = "auth"
	ErrKindQuota     = "quota"
	ErrKindTimeout   = "timeout"
	ErrKindMalformed = "malformed"
	ErrKindTransport = "transport"
)

// ProviderError describes a failed model invocation. The pipeline wraps it
// into a stage error; it never retries on its own.
type ProviderError struct {
	Provider string
	Kind     string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AsProviderError unwraps err to a ProviderError if there is one in the chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Provider is the interface for all LLM providers.
//
// Recognized options:
//   - "model": string, overrides the provider's default model
//   - "api_key": string, overrides the environment credential
//   - "timeout": time.Duration, per-call deadline
//   - "response_format": map with "type": "json_object" to request JSON mode
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats.
	AdaptInstructions(rawInstructions string) string
}

// wantsJSON reports whether the caller requested structured JSON output.
func wantsJSON(options map[string]interface{}) bool {
	rf, ok := options["response_format"].(map[string]interface{})
	return ok && rf["type"] == "json_object"
}

var errEmptyResponse = errors.New("model returned an empty response")

func errMissingKey(name string) error {
	return fmt.Errorf("%s environment variable not set", name)
}
