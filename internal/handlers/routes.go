package handlers

import (
	"net/http"
	"time"

	"healthlab-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) Routes() http.Handler {
	window := time.Duration(s.Cfg.RateLimitWindowSec) * time.Second
	chatLimiter := middleware.NewRateLimiter(s.Cfg.RateLimitChat, window)
	reportsLimiter := middleware.NewRateLimiter(s.Cfg.RateLimitReports, window)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.Log))
	r.Use(middleware.CORS(s.Cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	r.Get("/", s.Root)
	r.Get("/test", s.Diagnostics)
	r.Get("/schema", s.Schema)

	r.Route("/api", func(api chi.Router) {
		api.Get("/tests", s.Tests.List)
		api.Post("/tests", s.Tests.Create)

		api.Get("/bookings", s.Bookings.List)
		api.Post("/bookings", s.Bookings.Create)
		api.Patch("/bookings/{id}", s.Bookings.Update)

		api.Post("/promos/apply", s.Promos.Apply)
		api.With(reportsLimiter.Middleware).Post("/reports/view", s.Reports.View)
		api.With(chatLimiter.Middleware).Post("/chat", s.Chat.Message)
	})

	return r
}
