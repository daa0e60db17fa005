package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reinai/internal/models"
	"reinai/internal/services"
)

type stubCompleter struct {
	reply    string
	err      error
	called   bool
	apiKey   string
	model    string
	messages []models.Message
}

func (s *stubCompleter) Complete(ctx context.Context, apiKey, model string, messages []models.Message) (string, error) {
	s.called = true
	s.apiKey = apiKey
	s.model = model
	s.messages = messages
	return s.reply, s.err
}

func newTestRelay(c *stubCompleter, key string) *RelayHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRelayHandler(c, func() string { return key }, "mistralai/mistral-7b-instruct:free", logger)
}

func doRelay(h *RelayHandler, body string) (*httptest.ResponseRecorder, models.RelayResponse) {
	req := httptest.NewRequest(http.MethodPost, "/api/openai", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Complete(rr, req)

	var resp models.RelayResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	return rr, resp
}

func TestRelayHandler_MissingCredential(t *testing.T) {
	bodies := []string{
		`{"prompt":"hello"}`,
		`{"messages":[{"role":"user","content":"hi"}],"model":"qwen/qwen3-coder:free"}`,
		`not json at all`,
		``,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			c := &stubCompleter{reply: "unused"}
			rr, resp := doRelay(newTestRelay(c, ""), body)

			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
			}
			if resp.Error != msgMissingKey {
				t.Fatalf("expected configuration error, got %q", resp.Error)
			}
			if c.called {
				t.Fatal("upstream must not be called without a credential")
			}
		})
	}
}

func TestRelayHandler_InvalidBody(t *testing.T) {
	c := &stubCompleter{}
	rr, resp := doRelay(newTestRelay(c, "sk-test"), `{"prompt":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if resp.Error != msgInvalidBody {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
	if c.called {
		t.Fatal("upstream must not be called for an unparseable body")
	}
}

func TestRelayHandler_EmptyRequest(t *testing.T) {
	c := &stubCompleter{}
	rr, resp := doRelay(newTestRelay(c, "sk-test"), `{"prompt":"   ","messages":[{"role":"user","content":""}]}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if resp.Error != msgEmptyRequest {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
}

func TestRelayHandler_Success(t *testing.T) {
	c := &stubCompleter{reply: "Paris is the capital of France."}
	body := `{"prompt":"capital?","messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"},{"role":"user","content":"capital?"}],"model":"google/gemma-3-4b-it:free"}`

	rr, resp := doRelay(newTestRelay(c, "sk-test"), body)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if resp.Result != "Paris is the capital of France." {
		t.Fatalf("unexpected result %q", resp.Result)
	}
	if c.apiKey != "sk-test" {
		t.Errorf("expected credential to be forwarded, got %q", c.apiKey)
	}
	if c.model != "google/gemma-3-4b-it:free" {
		t.Errorf("expected requested model, got %q", c.model)
	}
	if len(c.messages) != 3 || c.messages[1].Role != models.RoleAssistant {
		t.Errorf("history should win over prompt and keep order: %+v", c.messages)
	}
}

func TestRelayHandler_PromptOnlyUsesDefaultModel(t *testing.T) {
	c := &stubCompleter{reply: "ok"}
	rr, _ := doRelay(newTestRelay(c, "sk-test"), `{"prompt":"  hello  "}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if c.model != "mistralai/mistral-7b-instruct:free" {
		t.Errorf("expected default model, got %q", c.model)
	}
	if len(c.messages) != 1 || c.messages[0].Role != models.RoleUser || c.messages[0].Content != "hello" {
		t.Errorf("expected single user turn from prompt, got %+v", c.messages)
	}
}

func TestRelayHandler_UpstreamError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"propagates status and message", &services.UpstreamError{Status: http.StatusTooManyRequests, Message: "Rate limit exceeded"}, http.StatusTooManyRequests, "Rate limit exceeded"},
		{"falls back to 400", &services.UpstreamError{Status: 0, Message: "API error"}, http.StatusBadRequest, "API error"},
		{"unexpected error", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "dial tcp: connection refused"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &stubCompleter{err: tc.err}
			rr, resp := doRelay(newTestRelay(c, "sk-test"), `{"prompt":"hi"}`)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if resp.Error != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, resp.Error)
			}
			if resp.Result != "" {
				t.Fatalf("error responses must not carry a result, got %q", resp.Result)
			}
		})
	}
}

func TestRelayHandler_CredentialReadPerRequest(t *testing.T) {
	key := ""
	c := &stubCompleter{reply: "ok"}
	h := NewRelayHandler(c, func() string { return key }, "m", nil)

	rr, _ := doRelay(h, `{"prompt":"hi"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 before key is set, got %d", rr.Code)
	}

	key = "sk-late"
	rr, _ = doRelay(h, `{"prompt":"hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 once key is set, got %d", rr.Code)
	}
	if c.apiKey != "sk-late" {
		t.Fatalf("expected the current key, got %q", c.apiKey)
	}
}

func TestNormalizeMessages(t *testing.T) {
	got := normalizeMessages(models.RelayRequest{
		Messages: []models.Message{
			{Role: " User ", Content: "a"},
			{Role: "", Content: "b"},
			{Role: "assistant", Content: "  "},
			{Role: "ASSISTANT", Content: "c"},
		},
	})

	want := []models.Message{
		{Role: models.RoleUser, Content: "a"},
		{Role: models.RoleUser, Content: "b"},
		{Role: models.RoleAssistant, Content: "c"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRelayHandler_UpstreamStatusThroughService(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited without message", http.StatusTooManyRequests, `{"error":{"code":429}}`},
		{"unavailable without message", http.StatusServiceUnavailable, `{"error":{"code":503}}`},
		{"non-json body", http.StatusBadGateway, `bad gateway`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer upstream.Close()

			svc := services.NewOpenRouterService(upstream.URL, upstream.Client())
			h := NewRelayHandler(svc, func() string { return "sk-test" }, "m", nil)

			rr, resp := doRelay(h, `{"prompt":"hi"}`)
			if rr.Code != tc.status {
				t.Fatalf("expected upstream status %d, got %d", tc.status, rr.Code)
			}
			if resp.Error != "API error" {
				t.Fatalf("expected generic message, got %q", resp.Error)
			}
		})
	}
}
