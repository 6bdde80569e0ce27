package promo

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"healthlab-backend/internal/httpx"
	"healthlab-backend/internal/middleware"
	"healthlab-backend/internal/transport"
	"healthlab-backend/internal/validation"
)

type ApplyRequest struct {
	Code  string  `json:"code" validate:"required,max=40"`
	Price float64 `json:"price" validate:"gte=0"`
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ApplyRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("promos apply: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("promos apply: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.service.Apply(ctx, req.Code, req.Price)
	if err != nil {
		log.Error("promos apply: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	log.Info("promos apply: ok", slog.String("code", req.Code), slog.Float64("discount", res.Discount))
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
