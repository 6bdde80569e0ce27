package catalog

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

type CreateRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Code        string  `json:"code" validate:"required,testcode"`
	Category    string  `json:"category" validate:"omitempty,max=60"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description *string `json:"description,omitempty"`
	Preparation *string `json:"preparation,omitempty"`
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx)
	if err != nil {
		log.Error("tests list: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	log.Info("tests list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("tests create: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("tests create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.service.Create(ctx, CreateInput{
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		Preparation: req.Preparation,
	})
	if err != nil {
		log.Warn("tests create: failed", slog.String("code", req.Code), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	log.Info("tests create: ok", slog.String("id", id), slog.String("code", NormalizeCode(req.Code)))
	transport.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
