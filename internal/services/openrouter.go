package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"reinai/internal/models"
)

const genericAPIError = "API error"

// OpenRouterService forwards chat completions to an OpenAI-compatible
// provider. It holds no credential; the caller supplies one per call.
type OpenRouterService struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenRouterService(baseURL string, httpClient *http.Client) *OpenRouterService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenRouterService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Complete sends one completion request and returns the content of the
// first choice. Provider failures come back as *UpstreamError.
func (s *OpenRouterService) Complete(ctx context.Context, apiKey, model string, messages []models.Message) (string, error) {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = s.baseURL
	clientConfig.HTTPClient = s.httpClient
	c := openai.NewClientWithConfig(clientConfig)

	history := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: history,
	})
	if err != nil {
		return "", translateError(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func translateError(err error) error {
	var reqErr *openai.RequestError
	hasReqErr := errors.As(err, &reqErr)

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = genericAPIError
		}
		// An envelope that fails to decode arrives wrapped in a
		// RequestError, and only the wrapper knows the status.
		status := apiErr.HTTPStatusCode
		if status == 0 && hasReqErr {
			status = reqErr.HTTPStatusCode
		}
		return &UpstreamError{Status: status, Message: msg}
	}

	// Non-2xx with a body that is not a provider error envelope.
	if hasReqErr && reqErr.HTTPStatusCode != 0 {
		return &UpstreamError{Status: reqErr.HTTPStatusCode, Message: genericAPIError}
	}

	return fmt.Errorf("completion request failed: %w", err)
}
