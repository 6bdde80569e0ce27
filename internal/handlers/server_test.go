package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthlab-backend/internal/catalog"
	"healthlab-backend/internal/config"
	"healthlab-backend/internal/events"
	"healthlab-backend/internal/models"
	"healthlab-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		FrontendOrigins:    []string{"*"},
		RateLimitChat:      100,
		RateLimitReports:   3,
		RateLimitWindowSec: 60,
		CacheTTLSeconds:    60,
		Timezone:           time.UTC,
	}
}

func newTestServer(t *testing.T, st store.Store) (*Server, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(testConfig(), st, log, Deps{Publisher: rec}), rec
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:4000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRootAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory())
	w := do(t, srv.Routes(), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"HealthLab Backend is running"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDiagnostics(t *testing.T) {
	mem := store.NewMemory()
	srv, _ := newTestServer(t, mem)
	router := srv.Routes()
	do(t, router, http.MethodGet, "/api/tests", "")

	var body DiagnosticsResponse
	w := do(t, router, http.MethodGet, "/test", "")
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Running", body.Backend)
	assert.Equal(t, "Available", body.Database)
	assert.Equal(t, "Connected", body.ConnectionStatus)
	assert.Equal(t, []string{"test"}, body.Collections)

	static, err := store.NewStatic(catalog.DefaultTests())
	require.NoError(t, err)
	srv, _ = newTestServer(t, static)
	w = do(t, srv.Routes(), http.MethodGet, "/test", "")
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Not Connected", body.ConnectionStatus)
	assert.Equal(t, store.DriverStatic, body.Driver)
}

func TestSchemaDescribesCollections(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory())
	w := do(t, srv.Routes(), http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Collections []CollectionSchema `json:"collections"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Collections, 6)

	byName := map[string]map[string]SchemaField{}
	for _, c := range body.Collections {
		fields := map[string]SchemaField{}
		for _, f := range c.Fields {
			fields[f.Name] = f
		}
		byName[c.Name] = fields
	}
	assert.Equal(t, SchemaField{Name: "code", Type: "string", Required: true}, byName["test"]["code"])
	assert.Equal(t, SchemaField{Name: "price", Type: "number", Required: false}, byName["booking"]["price"])
	assert.Equal(t, SchemaField{Name: "scheduled_at", Type: "datetime", Required: true}, byName["booking"]["scheduled_at"])
	assert.Equal(t, "object", byName["report"]["values"].Type)
}

// The full journey: book through chat, attach a report, read it with the PIN.
func TestBookingToReportJourney(t *testing.T) {
	mem := store.NewMemory()
	srv, rec := newTestServer(t, mem)
	router := srv.Routes()
	ctx := context.Background()

	_, err := mem.Create(ctx, store.CollectionUsers, models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", PIN: "2468", Role: models.UserRoleUser, IsActive: true})
	require.NoError(t, err)

	w := do(t, router, http.MethodGet, "/api/tests", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/chat",
		`{"user_id":"u1","text":"please book","intent":"book_test","payload":{"user_id":"u1","test_code":"HBA1C","scheduled_at":"2026-05-04T07:15:00Z"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var confirmed struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		BookingID string `json:"booking_id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&confirmed))
	assert.Equal(t, "booking_confirmed", confirmed.Type)
	assert.Equal(t, "Your HBA1C is booked for 04 May 2026, 07:15 AM.", confirmed.Message)

	viewBody := `{"booking_id":"` + confirmed.BookingID + `","pin":"2468"}`
	w = do(t, router, http.MethodPost, "/api/reports/view", viewBody)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Report not available yet")

	_, err = mem.Create(ctx, store.CollectionReports, models.Report{BookingID: confirmed.BookingID, TestCode: "HBA1C"})
	require.NoError(t, err)

	w = do(t, router, http.MethodPost, "/api/reports/view", viewBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"test_code":"HBA1C"`)

	w = do(t, router, http.MethodPatch, "/api/bookings/"+confirmed.BookingID, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code)

	published := rec.Events()
	require.Len(t, published, 2)
	assert.Equal(t, events.BookingCreated, published[0].Key)
	assert.Equal(t, events.BookingUpdated, published[1].Key)
	srv.Drain()
}

func TestReportsRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, store.NewMemory())
	router := srv.Routes()

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := do(t, router, http.MethodPost, "/api/reports/view", `{"booking_id":"x","pin":"0000"}`)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)
}

func TestStaticFallbackRoutes(t *testing.T) {
	static, err := store.NewStatic(catalog.DefaultTests())
	require.NoError(t, err)
	srv, _ := newTestServer(t, static)
	router := srv.Routes()

	w := do(t, router, http.MethodGet, "/api/tests", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []models.Test `json:"items"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list.Items, 7)

	w = do(t, router, http.MethodGet, "/api/bookings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/bookings", `{"user_id":"u1","test_code":"CBC","scheduled_at":"2026-03-01T10:00:00"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, router, http.MethodPatch, "/api/bookings/abc", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, router, http.MethodPost, "/api/reports/view", `{"booking_id":"abc","pin":"1234"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, router, http.MethodPost, "/api/promos/apply", `{"code":"NEWUSER10","price":100}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"discount":10,"total":90,"message":"New user 10% discount applied"}`, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/chat", `{"user_id":"u1","text":"I feel dizzy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"suggestions"`)
}
