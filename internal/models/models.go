package models

import "time"

const (
	BookingStatusBooked     = "booked"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"

	PromoTypePercent = "percent"
	PromoTypeFlat    = "flat"

	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"

	UserRoleUser   = "user"
	UserRoleDoctor = "doctor"
	UserRoleAdmin  = "admin"

	DefaultCategory = "General"
)

var validBookingStatuses = map[string]struct{}{
	BookingStatusBooked:     {},
	BookingStatusInProgress: {},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

func IsValidBookingStatus(value string) bool {
	_, ok := validBookingStatuses[value]
	return ok
}

type Test struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	Code        string    `bson:"code" json:"code"`
	Name        string    `bson:"name" json:"name"`
	Category    string    `bson:"category" json:"category"`
	Price       float64   `bson:"price" json:"price"`
	Description *string   `bson:"description,omitempty" json:"description,omitempty"`
	Preparation *string   `bson:"preparation,omitempty" json:"preparation,omitempty"`
	CreatedAt   time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type Booking struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	TestCode        string    `bson:"test_code" json:"test_code"`
	ScheduledAt     time.Time `bson:"scheduled_at" json:"scheduled_at"`
	Status          string    `bson:"status" json:"status"`
	Address         *string   `bson:"address" json:"address"`
	PaymentStatus   string    `bson:"payment_status" json:"payment_status"`
	Notes           *string   `bson:"notes,omitempty" json:"notes,omitempty"`
	Price           *float64  `bson:"price" json:"price"`
	PromoCode       *string   `bson:"promo_code" json:"promo_code"`
	DiscountApplied float64   `bson:"discount_applied" json:"discount_applied"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

type User struct {
	ID       string  `bson:"_id,omitempty" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Email    string  `bson:"email" json:"email"`
	Phone    *string `bson:"phone,omitempty" json:"phone,omitempty"`
	Role     string  `bson:"role" json:"role"`
	PIN      string  `bson:"pin,omitempty" json:"-"`
	IsActive bool    `bson:"is_active" json:"is_active"`
}

type Report struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	BookingID string                 `bson:"booking_id" json:"booking_id"`
	TestCode  string                 `bson:"test_code" json:"test_code"`
	URL       *string                `bson:"url,omitempty" json:"url,omitempty"`
	Summary   *string                `bson:"summary,omitempty" json:"summary,omitempty"`
	Values    map[string]interface{} `bson:"values,omitempty" json:"values,omitempty"`
}

type Promo struct {
	ID     string  `bson:"_id,omitempty" json:"id"`
	Code   string  `bson:"code" json:"code"`
	Type   string  `bson:"type" json:"type"`
	Value  float64 `bson:"value" json:"value"`
	Active bool    `bson:"active" json:"active"`
	Note   *string `bson:"note,omitempty" json:"note,omitempty"`
}

type Message struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	UserID    string                 `bson:"user_id" json:"user_id"`
	Role      string                 `bson:"role" json:"role"`
	Text      string                 `bson:"text" json:"text"`
	Context   map[string]interface{} `bson:"context,omitempty" json:"context,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}
