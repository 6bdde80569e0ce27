package notifications

import (
	"bytes"
	"html/template"
	"strings"

	"healthlab-backend/internal/models"
)

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p>Your test is booked. Here are the details:</p>
  <ul>
    <li>Test: {{.TestName}} ({{.TestCode}})</li>
    <li>When: {{.When}}</li>
    {{- if .Address}}
    <li>Sample collection address: {{.Address}}</li>
    {{- end}}
    {{- if .Price}}
    <li>Price: {{.Price}}</li>
    {{- end}}
    <li>Booking reference: {{.BookingID}}</li>
  </ul>
  {{- if .Preparation}}
  <p>Preparation: {{.Preparation}}</p>
  {{- end}}
  <p>Your results will be available with your 4-digit PIN once ready.</p>
</body>
</html>`

var bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))

type bookingConfirmationData struct {
	Name        string
	TestName    string
	TestCode    string
	When        string
	Address     string
	Price       string
	Preparation string
	BookingID   string
}

func buildBookingConfirmationHTML(user models.User, booking models.Booking, test models.Test) (string, error) {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = "there"
	}
	data := bookingConfirmationData{
		Name:      name,
		TestName:  test.Name,
		TestCode:  booking.TestCode,
		When:      booking.ScheduledAt.Format("02 Jan 2006, 03:04 PM"),
		BookingID: booking.ID,
	}
	if booking.Address != nil {
		data.Address = *booking.Address
	}
	if booking.Price != nil {
		data.Price = formatPrice(*booking.Price - booking.DiscountApplied)
	}
	if test.Preparation != nil {
		data.Preparation = *test.Preparation
	}
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
