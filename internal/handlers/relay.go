package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"reinai/internal/middleware"
	"reinai/internal/models"
	"reinai/internal/services"
)

const (
	msgMissingKey   = "API key is missing from server environment."
	msgInvalidBody  = "Invalid request body"
	msgEmptyRequest = "prompt or messages is required"
	msgUnexpected   = "Unexpected server error"
)

type completer interface {
	Complete(ctx context.Context, apiKey, model string, messages []models.Message) (string, error)
}

// RelayHandler proxies a chat completion to the upstream provider using
// the server-held credential.
type RelayHandler struct {
	completer    completer
	apiKey       func() string
	defaultModel string
	logger       *slog.Logger
}

func NewRelayHandler(completer completer, apiKey func() string, defaultModel string, logger *slog.Logger) *RelayHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayHandler{
		completer:    completer,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (h *RelayHandler) Complete(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", middleware.GetRequestID(r.Context()))

	// Credential check comes before anything else, whatever the payload.
	apiKey := h.apiKey()
	if apiKey == "" {
		log.Error("relay credential not configured")
		writeError(w, http.StatusInternalServerError, msgMissingKey)
		return
	}

	var req models.RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	messages := normalizeMessages(req)
	if len(messages) == 0 {
		writeError(w, http.StatusBadRequest, msgEmptyRequest)
		return
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = h.defaultModel
	}

	reply, err := h.completer.Complete(r.Context(), apiKey, model, messages)
	if err != nil {
		var upErr *services.UpstreamError
		if errors.As(err, &upErr) {
			status := upErr.Status
			if status < 400 || status > 599 {
				status = http.StatusBadRequest
			}
			log.Warn("upstream rejected completion", "model", model, "upstream_status", upErr.Status, "error", upErr.Message)
			writeError(w, status, upErr.Message)
			return
		}

		log.Error("completion failed", "model", model, "error", err)
		msg := err.Error()
		if msg == "" {
			msg = msgUnexpected
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	log.Info("completion relayed", "model", model, "messages", len(messages))
	writeJSON(w, http.StatusOK, models.RelayResponse{Result: reply})
}

// Models lists the catalog clients may choose from.
func (h *RelayHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": h.defaultModel,
		"models":  models.Catalog,
	})
}

// normalizeMessages prefers the full history and falls back to a single
// user turn built from the prompt.
func normalizeMessages(req models.RelayRequest) []models.Message {
	out := make([]models.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := models.Role(strings.ToLower(strings.TrimSpace(string(m.Role))))
		if role == "" {
			role = models.RoleUser
		}
		out = append(out, models.Message{Role: role, Content: m.Content})
	}
	if len(out) > 0 {
		return out
	}

	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		return []models.Message{{Role: models.RoleUser, Content: prompt}}
	}
	return nil
}
