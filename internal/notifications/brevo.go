package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"healthlab-backend/internal/models"
)

const (
	defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"
	bookingMailTag       = "booking-confirmation"
)

var (
	ErrMailerDisabled = errors.New("mailer disabled")
	ErrNoRecipient    = errors.New("booking owner has no email")
)

// BrevoClient delivers booking mail through the Brevo transactional API.
type BrevoClient struct {
	apiKey     string
	from       brevoContact
	sandbox    bool
	endpoint   string
	httpClient *http.Client
}

// NewBrevoClient returns nil when the key or sender is missing so callers
// can treat mail as optional.
func NewBrevoClient(apiKey, senderEmail, senderName string, sandbox bool) *BrevoClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(senderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	return &BrevoClient{
		apiKey:     apiKey,
		from:       brevoContact{Email: senderEmail, Name: senderName},
		sandbox:    sandbox,
		endpoint:   defaultBrevoEndpoint,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// bookingMail is one rendered confirmation, ready to hand to the provider.
type bookingMail struct {
	to        brevoContact
	subject   string
	html      string
	bookingID string
	testCode  string
}

func newBookingMail(user models.User, booking models.Booking, test models.Test) (bookingMail, error) {
	if strings.TrimSpace(user.Email) == "" {
		return bookingMail{}, ErrNoRecipient
	}
	html, err := buildBookingConfirmationHTML(user, booking, test)
	if err != nil {
		return bookingMail{}, fmt.Errorf("render booking mail: %w", err)
	}
	name := test.Name
	if name == "" {
		name = booking.TestCode
	}
	return bookingMail{
		to:        brevoContact{Email: user.Email, Name: user.Name},
		subject:   "Booking confirmed - " + name,
		html:      html,
		bookingID: booking.ID,
		testCode:  booking.TestCode,
	}, nil
}

// SendBookingConfirmation mails the booking owner and returns the provider
// message id.
func (c *BrevoClient) SendBookingConfirmation(ctx context.Context, user models.User, booking models.Booking, test models.Test) (string, error) {
	if c == nil {
		return "", ErrMailerDisabled
	}
	mail, err := newBookingMail(user, booking, test)
	if err != nil {
		return "", err
	}
	return c.deliver(ctx, mail)
}

func (c *BrevoClient) deliver(ctx context.Context, mail bookingMail) (string, error) {
	body := brevoEmail{
		Sender:      c.from,
		To:          []brevoContact{mail.to},
		Subject:     mail.subject,
		HTMLContent: mail.html,
		Tags:        []string{bookingMailTag},
		Params: map[string]string{
			"booking_id": mail.bookingID,
			"test_code":  mail.testCode,
		},
	}
	if c.sandbox {
		body.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("brevo encode booking %s: %w", mail.bookingID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo request booking %s: %w", mail.bookingID, err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo send booking %s: %w", mail.bookingID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("brevo rejected booking %s: status=%d body=%s", mail.bookingID, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var accepted struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return "", fmt.Errorf("brevo decode reply for booking %s: %w", mail.bookingID, err)
	}
	if accepted.MessageID == "" {
		return "", fmt.Errorf("brevo reply for booking %s has no messageId", mail.bookingID)
	}
	return accepted.MessageID, nil
}

type brevoEmail struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Tags        []string          `json:"tags,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
