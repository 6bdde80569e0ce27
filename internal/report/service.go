package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/auth"
	"healthlab-backend/internal/models"
	"healthlab-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrBookingNotFound = apperr.NotFound("Booking not found")
	ErrUserNotFound    = apperr.NotFound("User not found")
	ErrInvalidPIN      = apperr.Unauthorized("Invalid PIN")
	ErrNotReady        = apperr.NotFound("Report not available yet")
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// View releases the report for bookingID once the owner's PIN checks out.
// The PIN is verified before report existence is revealed.
func (s *Service) View(ctx context.Context, bookingID, pin string) (models.Report, error) {
	bookingID = strings.TrimSpace(bookingID)

	var b models.Booking
	if err := s.findOne(ctx, store.CollectionBookings, bson.M{"_id": bookingID}, &b, ErrBookingNotFound); err != nil {
		return models.Report{}, err
	}

	var owner models.User
	if err := s.findOne(ctx, store.CollectionUsers, bson.M{"_id": b.UserID}, &owner, ErrUserNotFound); err != nil {
		return models.Report{}, err
	}
	if err := auth.ComparePIN(owner.PIN, pin); err != nil {
		return models.Report{}, ErrInvalidPIN
	}

	var r models.Report
	if err := s.findOne(ctx, store.CollectionReports, bson.M{"booking_id": bookingID}, &r, ErrNotReady); err != nil {
		return models.Report{}, err
	}
	return r, nil
}

func (s *Service) findOne(ctx context.Context, collection string, filter bson.M, out interface{}, missing error) error {
	err := s.store.FindOne(ctx, collection, filter, out)
	if errors.Is(err, store.ErrNoDocument) {
		return missing
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	return nil
}
