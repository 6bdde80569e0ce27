package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/booking"
	"healthlab-backend/internal/catalog"
	"healthlab-backend/internal/models"
	"healthlab-backend/internal/promo"
	"healthlab-backend/internal/store"
	"healthlab-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatcher(st store.Store) *Dispatcher {
	log := quietLogger()
	cat := catalog.NewService(st, nil, time.Minute, log)
	bookings := booking.NewService(st, cat, promo.NewService(st), nil, nil, log)
	return NewDispatcher(st, cat, bookings, time.UTC, log)
}

func messages(t *testing.T, st store.Store, userID string) []models.Message {
	t.Helper()
	var out []models.Message
	require.NoError(t, st.FindMany(context.Background(), store.CollectionMessages, bson.M{"user_id": userID}, &out))
	return out
}

func TestReportIntentWinsOverEverything(t *testing.T) {
	d := newDispatcher(store.NewMemory())
	for _, text := range []string{
		"view my report",
		"Can you SHOW me the REPORT",
		"show report, I have a fever and feel dizzy",
		"Report VIEW",
	} {
		reply, err := d.Handle(context.Background(), Request{Text: text, Intent: IntentBookTest, Payload: map[string]interface{}{"user_id": "u1"}})
		require.NoError(t, err, text)
		got, ok := reply.(ActionRequired)
		require.True(t, ok, text)
		assert.Equal(t, ActionVerifyPIN, got.Action)
		assert.Equal(t, "Please enter your 4-digit PIN to access your reports.", got.Message())
	}
}

func TestStructuredBooking(t *testing.T) {
	st := store.NewMemory()
	d := newDispatcher(st)
	_, err := catalog.NewService(st, nil, time.Minute, quietLogger()).EnsureSeeded(context.Background())
	require.NoError(t, err)

	reply, err := d.Handle(context.Background(), Request{
		UserID: "u1",
		Text:   "book it",
		Intent: IntentBookTest,
		Payload: map[string]interface{}{
			"user_id":      "u1",
			"test_code":    "CBC",
			"scheduled_at": "2026-03-01T10:00:00",
		},
	})
	require.NoError(t, err)
	got, ok := reply.(BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, "Your CBC is booked for 01 Mar 2026, 10:00 AM.", got.Message())

	var b models.Booking
	require.NoError(t, st.FindOne(context.Background(), store.CollectionBookings, bson.M{"_id": got.BookingID}, &b))
	require.NotNil(t, b.Price)
	assert.Equal(t, 20.0, *b.Price)

	logged := messages(t, st, "u1")
	require.Len(t, logged, 2)
	assert.Equal(t, models.MessageRoleUser, logged[0].Role)
	assert.Equal(t, "book it", logged[0].Text)
	assert.Equal(t, models.MessageRoleAssistant, logged[1].Role)
	assert.Equal(t, KindBookingConfirmed, logged[1].Context["type"])
	assert.Equal(t, got.BookingID, logged[1].Context["booking_id"])
}

func TestStructuredBookingFailuresAbortTurn(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]interface{}
		message string
	}{
		{"bad date", map[string]interface{}{"user_id": "u1", "test_code": "CBC", "scheduled_at": "next week"}, "invalid booking payload: scheduled_at is not an ISO-8601 timestamp"},
		{"missing field", map[string]interface{}{"user_id": "u1", "scheduled_at": "2026-03-01T10:00:00"}, "invalid booking payload: test_code is required"},
		{"unknown test", map[string]interface{}{"user_id": "u1", "test_code": "XYZ", "scheduled_at": "2026-03-01T10:00:00"}, "Test not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.NewMemory()
			d := newDispatcher(st)

			_, err := d.Handle(context.Background(), Request{UserID: "u1", Text: "book", Intent: IntentBookTest, Payload: tc.payload})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrBadRequest))
			assert.Equal(t, tc.message, apperr.Message(err, ""))

			n, err := st.Count(context.Background(), store.CollectionBookings, bson.M{})
			require.NoError(t, err)
			assert.Zero(t, n)

			logged := messages(t, st, "u1")
			require.Len(t, logged, 1)
			assert.Equal(t, models.MessageRoleUser, logged[0].Role)
		})
	}
}

func TestStructuredBookingWithoutDatabase(t *testing.T) {
	st, err := store.NewStatic(catalog.DefaultTests())
	require.NoError(t, err)
	d := newDispatcher(st)

	_, err = d.Handle(context.Background(), Request{
		UserID:  "u1",
		Text:    "book",
		Intent:  IntentBookTest,
		Payload: map[string]interface{}{"user_id": "u1", "test_code": "CBC", "scheduled_at": "2026-03-01T10:00:00"},
	})
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
}

func TestSymptomSuggestions(t *testing.T) {
	st := store.NewMemory()
	d := newDispatcher(st)

	reply, err := d.Handle(context.Background(), Request{UserID: "u2", Text: "I feel dizzy and have a fever"})
	require.NoError(t, err)
	got, ok := reply.(Suggestions)
	require.True(t, ok)
	assert.Equal(t, "Here are some recommended tests based on your symptoms:", got.Message())
	assert.Equal(t, "Would you like to book one of these?", got.CTA)

	codes := make([]string, 0, len(got.Tests))
	for _, test := range got.Tests {
		codes = append(codes, test.Code)
	}
	assert.ElementsMatch(t, []string{"CBC", "IRON", "CRP"}, codes)

	// The suggestion path seeds an empty catalog.
	n, err := st.Count(context.Background(), store.CollectionTests, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Len(t, messages(t, st, "u2"), 2)
}

func TestSymptomSuggestionsWithoutDatabase(t *testing.T) {
	st, err := store.NewStatic(catalog.DefaultTests())
	require.NoError(t, err)
	d := newDispatcher(st)

	reply, err := d.Handle(context.Background(), Request{UserID: "u1", Text: "always tired"})
	require.NoError(t, err)
	got, ok := reply.(Suggestions)
	require.True(t, ok)
	assert.Len(t, got.Tests, 3)
}

func TestFallbackAndAnonymousTurns(t *testing.T) {
	st := store.NewMemory()
	d := newDispatcher(st)

	reply, err := d.Handle(context.Background(), Request{Text: "hello", Intent: IntentBookTest})
	require.NoError(t, err)
	assert.Equal(t, KindText, reply.Kind())
	assert.Contains(t, reply.Message(), "I can help you book tests")

	n, err := st.Count(context.Background(), store.CollectionMessages, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplyJSONShapes(t *testing.T) {
	cases := []struct {
		reply Reply
		want  string
	}{
		{ActionRequired{Action: "verify_pin", Text: "pin please"}, `{"type":"action_required","action":"verify_pin","message":"pin please"}`},
		{BookingConfirmed{Text: "booked", BookingID: "b1"}, `{"type":"booking_confirmed","message":"booked","booking_id":"b1"}`},
		{Suggestions{Text: "try", CTA: "book?"}, `{"type":"suggestions","message":"try","tests":[],"cta":"book?"}`},
		{Text{Text: "help"}, `{"type":"text","message":"help"}`},
	}
	for _, tc := range cases {
		raw, err := json.Marshal(tc.reply)
		require.NoError(t, err)
		assert.JSONEq(t, tc.want, string(raw))
	}
}

func TestHandlerMessage(t *testing.T) {
	h := NewHandler(newDispatcher(store.NewMemory()), validation.New(), quietLogger())

	w := httptest.NewRecorder()
	h.Message(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"text":"show my report"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"action_required","action":"verify_pin","message":"Please enter your 4-digit PIN to access your reports."}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Message(w, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"text":"book","intent":"book_test","payload":{"user_id":"u1","test_code":"CBC","scheduled_at":"soon"}}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Message(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"text":"`+strings.Repeat("a", 2001)+`"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerMessageEmptyTextGetsHelp(t *testing.T) {
	h := NewHandler(newDispatcher(store.NewMemory()), validation.New(), quietLogger())

	for _, body := range []string{`{"text":""}`, `{"user_id":"u1"}`} {
		w := httptest.NewRecorder()
		h.Message(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code, body)

		var got map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "text", got["type"])
		assert.Contains(t, got["message"], "I can help you book tests")
	}
}
