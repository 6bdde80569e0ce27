package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"healthlab-backend/internal/store"
	"healthlab-backend/internal/transport"
)

type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	Driver           string   `json:"driver"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "HealthLab Backend is running",
	})
}

// Diagnostics reports storage state. It always answers 200; problems are
// described in the body.
func (s *Server) Diagnostics(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	resp := DiagnosticsResponse{
		Backend:          "Running",
		Database:         "Not Available",
		DatabaseURL:      "Not Set",
		DatabaseName:     "Not Set",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}
	if s.Cfg != nil && s.Cfg.DatabaseURL != "" {
		resp.DatabaseURL = "Set"
	}

	d, ok := s.Store.(store.Describer)
	if !ok {
		transport.WriteJSON(w, http.StatusOK, resp)
		return
	}
	resp.Driver = d.Driver()
	if d.Driver() == store.DriverStatic {
		resp.Database = "Not Available (serving static catalog)"
		transport.WriteJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp.Database = "Available"
	resp.DatabaseName = d.DatabaseName()
	names, err := d.CollectionNames(ctx)
	if err != nil {
		log.Warn("diagnostics: list collections failed", slog.String("error", err.Error()))
		resp.Database = "Error: " + truncate(err.Error(), 80)
		transport.WriteJSON(w, http.StatusOK, resp)
		return
	}
	resp.ConnectionStatus = "Connected"
	if names != nil {
		resp.Collections = names
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
