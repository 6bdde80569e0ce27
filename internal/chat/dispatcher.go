// Package chat resolves free-text chat turns into one of four replies:
// a PIN prompt, a booking confirmation, test suggestions or help text.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/booking"
	"healthlab-backend/internal/models"
	"healthlab-backend/internal/store"
	"healthlab-backend/internal/symptoms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	IntentBookTest  = "book_test"
	ActionVerifyPIN = "verify_pin"

	pinPrompt         = "Please enter your 4-digit PIN to access your reports."
	suggestionsIntro  = "Here are some recommended tests based on your symptoms:"
	suggestionsCTA    = "Would you like to book one of these?"
	helpText          = "I can help you book tests, suggest investigations from symptoms, apply promo codes, and fetch your reports securely. Try: 'I feel dizzy' or 'Book CBC tomorrow 10am'."
	confirmTimeLayout = "02 Jan 2006, 03:04 PM"
)

type Booker interface {
	Create(ctx context.Context, in booking.Input) (models.Booking, error)
}

type Catalog interface {
	EnsureSeeded(ctx context.Context) (int, error)
	FindByCodes(ctx context.Context, codes []string) ([]models.Test, error)
}

type Request struct {
	UserID  string
	Text    string
	Intent  string
	Payload map[string]interface{}
}

type Dispatcher struct {
	store    store.Store
	catalog  Catalog
	bookings Booker
	location *time.Location
	log      *slog.Logger
}

func NewDispatcher(st store.Store, catalog Catalog, bookings Booker, location *time.Location, log *slog.Logger) *Dispatcher {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		store:    st,
		catalog:  catalog,
		bookings: bookings,
		location: location,
		log:      log,
	}
}

// Handle answers one chat turn. The first matching intent wins: report
// access, structured booking, symptom suggestions, then help text. Turns
// with a user id are logged before and after dispatch; a failed turn logs
// no assistant reply.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (Reply, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := d.record(ctx, req.UserID, models.MessageRoleUser, req.Text, nil); err != nil {
		return nil, err
	}

	reply, err := d.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	var replyCtx map[string]interface{}
	if req.UserID != "" {
		if replyCtx, err = replyContext(reply); err != nil {
			return nil, fmt.Errorf("encode reply: %w", err)
		}
	}
	if err := d.record(ctx, req.UserID, models.MessageRoleAssistant, reply.Message(), replyCtx); err != nil {
		return nil, err
	}
	return reply, nil
}

func (d *Dispatcher) resolve(ctx context.Context, req Request) (Reply, error) {
	text := strings.ToLower(req.Text)

	if wantsReport(text) {
		return ActionRequired{Action: ActionVerifyPIN, Text: pinPrompt}, nil
	}

	if req.Intent == IntentBookTest && len(req.Payload) > 0 {
		return d.book(ctx, req.Payload)
	}

	if suggested := symptoms.Classify(text); len(suggested) > 0 {
		if _, err := d.catalog.EnsureSeeded(ctx); err != nil {
			return nil, err
		}
		tests, err := d.catalog.FindByCodes(ctx, suggested.Codes())
		if err != nil {
			return nil, err
		}
		return Suggestions{Text: suggestionsIntro, Tests: tests, CTA: suggestionsCTA}, nil
	}

	return Text{Text: helpText}, nil
}

func (d *Dispatcher) book(ctx context.Context, payload map[string]interface{}) (Reply, error) {
	in, err := ParseBookingPayload(payload, d.location)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	b, err := d.bookings.Create(ctx, in)
	if err != nil {
		// An unknown test is the caller's mistake at this layer.
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.BadRequest(apperr.Message(err, "Test not found"))
		}
		return nil, err
	}

	return BookingConfirmed{
		Text:      fmt.Sprintf("Your %s is booked for %s.", b.TestCode, in.ScheduledAt.Format(confirmTimeLayout)),
		BookingID: b.ID,
	}, nil
}

func (d *Dispatcher) record(ctx context.Context, userID, role, text string, replyCtx map[string]interface{}) error {
	if userID == "" {
		return nil
	}
	msg := models.Message{
		ID:        primitive.NewObjectID().Hex(),
		UserID:    userID,
		Role:      role,
		Text:      text,
		Context:   replyCtx,
		CreatedAt: time.Now().UTC(),
	}
	_, err := d.store.Create(ctx, store.CollectionMessages, msg)
	if errors.Is(err, store.ErrUnavailable) {
		d.log.Debug("chat log: storage unavailable", slog.String("role", role))
		return nil
	}
	if err != nil {
		return fmt.Errorf("log %s message: %w", role, err)
	}
	return nil
}

func wantsReport(text string) bool {
	return strings.Contains(text, "report") && (strings.Contains(text, "view") || strings.Contains(text, "show"))
}
