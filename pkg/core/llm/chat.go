package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one turn of an OpenAI-style chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// postChatCompletion performs a chat-completions call against an
// OpenAI-compatible endpoint and returns the first choice's content.
// Both the OpenAI and DeepSeek providers go through here.
func postChatCompletion(ctx context.Context, providerName, url, apiKey string, req chatRequest, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", &ProviderError{Provider: providerName, Kind: ErrKindMalformed, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: providerName, Kind: ErrKindTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		kind := ErrKindTransport
		if ctx.Err() == context.DeadlineExceeded {
			kind = ErrKindTimeout
		}
		return "", &ProviderError{Provider: providerName, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: providerName, Kind: ErrKindTransport, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", &ProviderError{Provider: providerName, Kind: ErrKindAuth, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))}
	case http.StatusTooManyRequests:
		return "", &ProviderError{Provider: providerName, Kind: ErrKindQuota, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))}
	default:
		return "", &ProviderError{Provider: providerName, Kind: ErrKindTransport, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: providerName, Kind: ErrKindMalformed, Err: err}
	}
	if parsed.Error != nil {
		return "", &ProviderError{Provider: providerName, Kind: ErrKindTransport, Err: fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &ProviderError{Provider: providerName, Kind: ErrKindMalformed, Err: errEmptyResponse}
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
