package booking

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"healthlab-backend/internal/httpx"
	"healthlab-backend/internal/middleware"
	"healthlab-backend/internal/transport"
	"healthlab-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type CreateRequest struct {
	UserID      string  `json:"user_id" validate:"required,max=64"`
	TestCode    string  `json:"test_code" validate:"required,max=40"`
	ScheduledAt string  `json:"scheduled_at" validate:"required,isotime"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	PromoCode   *string `json:"promo_code,omitempty" validate:"omitempty,max=40"`
}

type UpdateRequest struct {
	ScheduledAt *string `json:"scheduled_at,omitempty" validate:"omitempty,isotime"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=booked in_progress completed cancelled"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

type Handler struct {
	service  *Service
	val      *validation.Validator
	log      *slog.Logger
	location *time.Location
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger, location *time.Location) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		service:  service,
		val:      val,
		log:      log,
		location: location,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, userID)
	if err != nil {
		log.Error("bookings list: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	log.Info("bookings list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("bookings create: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("bookings create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}
	scheduledAt, err := httpx.ParseISOTime(req.ScheduledAt, h.location)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"ScheduledAt": "isotime"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	b, err := h.service.Create(ctx, Input{
		UserID:      req.UserID,
		TestCode:    req.TestCode,
		ScheduledAt: scheduledAt,
		Address:     req.Address,
		PromoCode:   req.PromoCode,
	})
	if err != nil {
		log.Warn("bookings create: failed", slog.String("test_code", req.TestCode), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	log.Info("bookings create: ok", slog.String("id", b.ID), slog.String("test_code", b.TestCode))
	transport.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":      b.ID,
		"message": "Booking created",
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("bookings update: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("bookings update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	in := UpdateInput{Status: req.Status, Address: req.Address}
	if req.ScheduledAt != nil {
		at, err := httpx.ParseISOTime(*req.ScheduledAt, h.location)
		if err != nil {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"ScheduledAt": "isotime"})
			return
		}
		in.ScheduledAt = &at
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Update(ctx, id, in); err != nil {
		log.Warn("bookings update: failed", slog.String("id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	log.Info("bookings update: ok", slog.String("id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message": "Updated"})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
