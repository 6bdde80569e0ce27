package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/catalog"
	"healthlab-backend/internal/events"
	"healthlab-backend/internal/models"
	"healthlab-backend/internal/promo"
	"healthlab-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound      = apperr.NotFound("Booking not found")
	ErrInvalidStatus = apperr.BadRequest("Invalid booking status")
)

type TestLookup interface {
	Lookup(ctx context.Context, code string) (models.Test, error)
}

type Discounter interface {
	Apply(ctx context.Context, code string, price float64) (promo.Result, error)
}

type Mailer interface {
	SendBookingConfirmation(ctx context.Context, user models.User, booking models.Booking, test models.Test) (string, error)
}

type Input struct {
	UserID      string
	TestCode    string
	ScheduledAt time.Time
	Address     *string
	PromoCode   *string
}

type UpdateInput struct {
	ScheduledAt *time.Time
	Status      *string
	Address     *string
}

type Service struct {
	store     store.Store
	tests     TestLookup
	promos    Discounter
	publisher events.Publisher
	mailer    Mailer
	log       *slog.Logger
	mailWG    sync.WaitGroup
}

// NewService wires the booking creator. publisher and mailer may be nil.
func NewService(st store.Store, tests TestLookup, promos Discounter, publisher events.Publisher, mailer Mailer, log *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     st,
		tests:     tests,
		promos:    promos,
		publisher: publisher,
		mailer:    mailer,
		log:       log,
	}
}

// Create snapshots the catalog price and persists a new booking. An unknown
// test code fails with catalog.ErrNotFound; an unreachable catalog leaves the
// price unset.
func (s *Service) Create(ctx context.Context, in Input) (models.Booking, error) {
	code := catalog.NormalizeCode(in.TestCode)

	var price *float64
	test, err := s.tests.Lookup(ctx, code)
	switch {
	case err == nil:
		p := test.Price
		price = &p
	case errors.Is(err, apperr.ErrUnavailable):
		test = models.Test{Code: code, Name: code}
	default:
		return models.Booking{}, err
	}

	discount := 0.0
	promoCode := normalizePromo(in.PromoCode)
	if promoCode != nil && price != nil && s.promos != nil {
		res, err := s.promos.Apply(ctx, *promoCode, *price)
		if err != nil {
			return models.Booking{}, err
		}
		discount = res.Discount
	}

	now := time.Now().UTC()
	b := models.Booking{
		ID:              primitive.NewObjectID().Hex(),
		UserID:          strings.TrimSpace(in.UserID),
		TestCode:        code,
		ScheduledAt:     in.ScheduledAt,
		Status:          models.BookingStatusBooked,
		Address:         in.Address,
		PaymentStatus:   models.PaymentStatusPending,
		Price:           price,
		PromoCode:       promoCode,
		DiscountApplied: discount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	id, err := s.store.Create(ctx, store.CollectionBookings, b)
	if err != nil {
		return models.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	b.ID = id

	s.publish(ctx, events.BookingCreated, b)
	s.sendConfirmation(b, test)
	return b, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Booking, error) {
	filter := bson.M{}
	if userID = strings.TrimSpace(userID); userID != "" {
		filter["user_id"] = userID
	}
	var items []models.Booking
	if err := s.store.FindMany(ctx, store.CollectionBookings, filter, &items); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return []models.Booking{}, nil
		}
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if items == nil {
		items = []models.Booking{}
	}
	return items, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	id = strings.TrimSpace(id)
	set := bson.M{"updated_at": time.Now().UTC()}
	if in.ScheduledAt != nil {
		set["scheduled_at"] = *in.ScheduledAt
	}
	if in.Status != nil {
		if !models.IsValidBookingStatus(*in.Status) {
			return ErrInvalidStatus
		}
		set["status"] = *in.Status
	}
	if in.Address != nil {
		set["address"] = *in.Address
	}

	matched, err := s.store.UpdateOne(ctx, store.CollectionBookings, bson.M{"_id": id}, set)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	if matched == 0 {
		return ErrNotFound
	}

	var b models.Booking
	if err := s.store.FindOne(ctx, store.CollectionBookings, bson.M{"_id": id}, &b); err != nil {
		s.log.Warn("bookings update: reload failed", slog.String("id", id), slog.String("error", err.Error()))
		b = models.Booking{ID: id}
	}
	s.publish(ctx, events.BookingUpdated, b)
	return nil
}

// Wait blocks until queued confirmation emails have been attempted.
func (s *Service) Wait() {
	s.mailWG.Wait()
}

func (s *Service) publish(ctx context.Context, key string, b models.Booking) {
	evt := events.BookingEvent{
		Type:        key,
		BookingID:   b.ID,
		UserID:      b.UserID,
		TestCode:    b.TestCode,
		ScheduledAt: b.ScheduledAt,
		Status:      b.Status,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, key, evt); err != nil {
		s.log.Warn("bookings event: publish failed",
			slog.String("key", key),
			slog.String("id", b.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) sendConfirmation(b models.Booking, test models.Test) {
	if s.mailer == nil || b.UserID == "" {
		return
	}
	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var user models.User
		if err := s.store.FindOne(ctx, store.CollectionUsers, bson.M{"_id": b.UserID}, &user); err != nil {
			s.log.Info("bookings email: owner not found", slog.String("id", b.ID))
			return
		}
		if strings.TrimSpace(user.Email) == "" {
			return
		}
		messageID, err := s.mailer.SendBookingConfirmation(ctx, user, b, test)
		if err != nil {
			s.log.Warn("bookings email: send failed", slog.String("id", b.ID), slog.String("error", err.Error()))
			return
		}
		s.log.Info("bookings email: sent", slog.String("id", b.ID), slog.String("message_id", messageID))
	}()
}

func normalizePromo(code *string) *string {
	if code == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*code))
	if v == "" {
		return nil
	}
	return &v
}
