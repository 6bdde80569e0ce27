package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/httpx"
	"healthlab-backend/internal/middleware"
	"healthlab-backend/internal/transport"
	"healthlab-backend/internal/validation"
)

type MessageRequest struct {
	UserID  string                 `json:"user_id,omitempty" validate:"max=64"`
	Text    string                 `json:"text" validate:"max=2000"`
	Intent  string                 `json:"intent,omitempty" validate:"max=40"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

type Handler struct {
	dispatcher *Dispatcher
	val        *validation.Validator
	log        *slog.Logger
}

func NewHandler(dispatcher *Dispatcher, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, val: val, log: log}
}

func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req MessageRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("chat message: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("chat message: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	reply, err := h.dispatcher.Handle(ctx, Request{
		UserID:  req.UserID,
		Text:    req.Text,
		Intent:  req.Intent,
		Payload: req.Payload,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrBadRequest) {
			log.Warn("chat message: rejected", slog.String("error", err.Error()))
		} else {
			log.Error("chat message: failed", slog.String("error", err.Error()))
		}
		transport.WriteAppError(w, err)
		return
	}

	log.Info("chat message: ok", slog.String("reply", reply.Kind()), slog.Bool("anonymous", req.UserID == ""))
	transport.WriteJSON(w, http.StatusOK, reply)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
