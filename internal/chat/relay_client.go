package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"reinai/internal/models"
)

const fallbackRelayErr = "API request failed"

// RelayError is a failure reported by the relay endpoint. Its text is the
// relay's own message so it can be shown to the user as is.
type RelayError struct {
	Status  int
	Message string
}

func (e *RelayError) Error() string { return e.Message }

// RelayClient calls the relay endpoint over HTTP.
type RelayClient struct {
	url        string
	httpClient *http.Client
}

func NewRelayClient(url string, httpClient *http.Client) *RelayClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RelayClient{url: url, httpClient: httpClient}
}

func (c *RelayClient) Complete(ctx context.Context, messages []models.Message, model string) (string, error) {
	payload := models.RelayRequest{
		Prompt:   lastUserContent(messages),
		Messages: messages,
		Model:    model,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach relay at %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var data models.RelayResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		if !ok {
			return "", &RelayError{Status: resp.StatusCode, Message: fallbackRelayErr}
		}
		return "", fmt.Errorf("failed to decode relay response: %w", err)
	}

	if !ok || data.Error != "" {
		msg := data.Error
		if msg == "" {
			msg = fallbackRelayErr
		}
		return "", &RelayError{Status: resp.StatusCode, Message: msg}
	}
	return data.Result, nil
}

func lastUserContent(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
