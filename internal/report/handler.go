package report

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

type ViewRequest struct {
	BookingID string `json:"booking_id" validate:"required,max=64"`
	PIN       string `json:"pin" validate:"required,max=16"`
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ViewRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("reports view: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("reports view: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rep, err := h.service.View(ctx, req.BookingID, req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnauthorized):
			log.Warn("reports view: invalid pin", slog.String("booking_id", req.BookingID))
		case errors.Is(err, apperr.ErrNotFound):
			log.Info("reports view: not found", slog.String("booking_id", req.BookingID), slog.String("reason", err.Error()))
		default:
			log.Error("reports view: database error", slog.String("error", err.Error()))
		}
		transport.WriteAppError(w, err)
		return
	}

	log.Info("reports view: ok", slog.String("booking_id", req.BookingID))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"report": rep,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
