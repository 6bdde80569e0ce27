package chat

import (
	"fmt"
	"strings"
	"time"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/booking"
	"healthlab-backend/internal/httpx"
)

// PayloadError reports why a structured booking payload was rejected.
type PayloadError struct {
	Field  string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid booking payload: %s %s", e.Field, e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return apperr.ErrBadRequest
}

// ParseBookingPayload turns a book_test payload into a booking input.
// Naive timestamps are read in loc.
func ParseBookingPayload(payload map[string]interface{}, loc *time.Location) (booking.Input, error) {
	userID, err := requiredString(payload, "user_id")
	if err != nil {
		return booking.Input{}, err
	}
	testCode, err := requiredString(payload, "test_code")
	if err != nil {
		return booking.Input{}, err
	}
	rawWhen, err := requiredString(payload, "scheduled_at")
	if err != nil {
		return booking.Input{}, err
	}
	when, err := httpx.ParseISOTime(rawWhen, loc)
	if err != nil {
		return booking.Input{}, &PayloadError{Field: "scheduled_at", Reason: "is not an ISO-8601 timestamp"}
	}
	address, err := optionalString(payload, "address")
	if err != nil {
		return booking.Input{}, err
	}

	return booking.Input{
		UserID:      userID,
		TestCode:    testCode,
		ScheduledAt: when,
		Address:     address,
	}, nil
}

func requiredString(payload map[string]interface{}, key string) (string, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return "", &PayloadError{Field: key, Reason: "is required"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &PayloadError{Field: key, Reason: "must be a string"}
	}
	if s = strings.TrimSpace(s); s == "" {
		return "", &PayloadError{Field: key, Reason: "is required"}
	}
	return s, nil
}

func optionalString(payload map[string]interface{}, key string) (*string, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, &PayloadError{Field: key, Reason: "must be a string"}
	}
	return &s, nil
}
