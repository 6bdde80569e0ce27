package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"healthlab-backend/internal/booking"
	"healthlab-backend/internal/cache"
	"healthlab-backend/internal/catalog"
	"healthlab-backend/internal/chat"
	"healthlab-backend/internal/config"
	"healthlab-backend/internal/events"
	"healthlab-backend/internal/middleware"
	"healthlab-backend/internal/promo"
	"healthlab-backend/internal/report"
	"healthlab-backend/internal/store"
	"healthlab-backend/internal/validation"
)

// Deps are the optional collaborators; nil values disable the feature.
type Deps struct {
	Cache     cache.Cache
	Publisher events.Publisher
	Mailer    booking.Mailer
}

// Server owns the service-level endpoints and the feature handlers mounted
// under /api.
type Server struct {
	Cfg   *config.Config
	Store store.Store
	Log   *slog.Logger

	Catalog  *catalog.Service
	bookings *booking.Service

	Tests    *catalog.Handler
	Bookings *booking.Handler
	Promos   *promo.Handler
	Reports  *report.Handler
	Chat     *chat.Handler
}

func NewServer(cfg *config.Config, st store.Store, log *slog.Logger, deps Deps) *Server {
	val := validation.New()
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second

	catalogSvc := catalog.NewService(st, deps.Cache, ttl, log)
	promoSvc := promo.NewService(st)
	bookingSvc := booking.NewService(st, catalogSvc, promoSvc, deps.Publisher, deps.Mailer, log)
	reportSvc := report.NewService(st)
	dispatcher := chat.NewDispatcher(st, catalogSvc, bookingSvc, cfg.Timezone, log)

	return &Server{
		Cfg:      cfg,
		Store:    st,
		Log:      log,
		Catalog:  catalogSvc,
		bookings: bookingSvc,
		Tests:    catalog.NewHandler(catalogSvc, val, log),
		Bookings: booking.NewHandler(bookingSvc, val, log, cfg.Timezone),
		Promos:   promo.NewHandler(promoSvc, val, log),
		Reports:  report.NewHandler(reportSvc, val, log),
		Chat:     chat.NewHandler(dispatcher, val, log),
	}
}

// Drain waits for background work started by requests, such as
// confirmation emails.
func (s *Server) Drain() {
	s.bookings.Wait()
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
