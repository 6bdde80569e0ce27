package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthlab-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMemoryCreateAndFindOne(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	when := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	id, err := m.Create(ctx, CollectionBookings, models.Booking{
		UserID:      "u1",
		TestCode:    "CBC",
		ScheduledAt: when,
		Status:      models.BookingStatusBooked,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var got models.Booking
	require.NoError(t, m.FindOne(ctx, CollectionBookings, bson.M{"_id": id}, &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "CBC", got.TestCode)
	assert.True(t, when.Equal(got.ScheduledAt))
	assert.Nil(t, got.Price)
}

func TestMemoryFindOneMissing(t *testing.T) {
	m := NewMemory()
	var got models.Test
	err := m.FindOne(context.Background(), CollectionTests, bson.M{"code": "NOPE"}, &got)
	assert.True(t, errors.Is(err, ErrNoDocument))
}

func TestMemoryFindManyWithIn(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, code := range []string{"CBC", "IRON", "LFT"} {
		_, err := m.Create(ctx, CollectionTests, models.Test{Code: code, Name: code, Price: 10})
		require.NoError(t, err)
	}

	var items []models.Test
	require.NoError(t, m.FindMany(ctx, CollectionTests, bson.M{"code": bson.M{"$in": []string{"CBC", "LFT", "B12"}}}, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "CBC", items[0].Code)
	assert.Equal(t, "LFT", items[1].Code)

	var none []models.Test
	require.NoError(t, m.FindMany(ctx, CollectionTests, bson.M{"code": "B12"}, &none))
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryUniqueCode(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Create(ctx, CollectionTests, models.Test{Code: "CBC"})
	require.NoError(t, err)

	_, err = m.Create(ctx, CollectionTests, models.Test{Code: "CBC"})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestMemoryUpdateOneAndCount(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id, err := m.Create(ctx, CollectionPromos, models.Promo{Code: "FLAT5", Type: models.PromoTypeFlat, Value: 5, Active: true})
	require.NoError(t, err)

	matched, err := m.UpdateOne(ctx, CollectionPromos, bson.M{"_id": id}, bson.M{"active": false})
	require.NoError(t, err)
	assert.EqualValues(t, 1, matched)

	n, err := m.Count(ctx, CollectionPromos, bson.M{"code": "FLAT5", "active": true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	matched, err = m.UpdateOne(ctx, CollectionPromos, bson.M{"_id": "missing"}, bson.M{"active": true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, matched)
}

func TestMemoryRejectsUnknownCollection(t *testing.T) {
	_, err := NewMemory().Create(context.Background(), "products", bson.M{"x": 1})
	assert.Error(t, err)
}
