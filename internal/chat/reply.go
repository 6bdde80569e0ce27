package chat

import (
	"encoding/json"

	"healthlab-backend/internal/models"
)

const (
	KindActionRequired   = "action_required"
	KindBookingConfirmed = "booking_confirmed"
	KindSuggestions      = "suggestions"
	KindText             = "text"
)

// Reply is one of ActionRequired, BookingConfirmed, Suggestions or Text.
// Each variant serializes with a "type" discriminator.
type Reply interface {
	Kind() string
	Message() string
	isReply()
}

type ActionRequired struct {
	Action string
	Text   string
}

type BookingConfirmed struct {
	Text      string
	BookingID string
}

type Suggestions struct {
	Text  string
	Tests []models.Test
	CTA   string
}

type Text struct {
	Text string
}

func (ActionRequired) Kind() string   { return KindActionRequired }
func (BookingConfirmed) Kind() string { return KindBookingConfirmed }
func (Suggestions) Kind() string      { return KindSuggestions }
func (Text) Kind() string             { return KindText }

func (r ActionRequired) Message() string   { return r.Text }
func (r BookingConfirmed) Message() string { return r.Text }
func (r Suggestions) Message() string      { return r.Text }
func (r Text) Message() string             { return r.Text }

func (ActionRequired) isReply()   {}
func (BookingConfirmed) isReply() {}
func (Suggestions) isReply()      {}
func (Text) isReply()             {}

func (r ActionRequired) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Action  string `json:"action"`
		Message string `json:"message"`
	}{r.Kind(), r.Action, r.Text})
}

func (r BookingConfirmed) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		BookingID string `json:"booking_id"`
	}{r.Kind(), r.Text, r.BookingID})
}

func (r Suggestions) MarshalJSON() ([]byte, error) {
	tests := r.Tests
	if tests == nil {
		tests = []models.Test{}
	}
	return json.Marshal(struct {
		Type    string        `json:"type"`
		Message string        `json:"message"`
		Tests   []models.Test `json:"tests"`
		CTA     string        `json:"cta"`
	}{r.Kind(), r.Text, tests, r.CTA})
}

func (r Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{r.Kind(), r.Text})
}

// replyContext is the reply as a generic document, stored alongside the
// assistant turn.
func replyContext(r Reply) (map[string]interface{}, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
