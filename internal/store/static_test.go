package store

import (
	"context"
	"errors"
	"testing"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newStatic(t *testing.T) *Static {
	t.Helper()
	s, err := NewStatic([]models.Test{
		{Code: "CBC", Name: "Complete Blood Count", Category: "Hematology", Price: 20},
		{Code: "LFT", Name: "Liver Function Test", Category: "Biochemistry", Price: 30},
	})
	require.NoError(t, err)
	return s
}

func TestStaticServesCatalog(t *testing.T) {
	ctx := context.Background()
	s := newStatic(t)

	var test models.Test
	require.NoError(t, s.FindOne(ctx, CollectionTests, bson.M{"code": "LFT"}, &test))
	assert.Equal(t, 30.0, test.Price)

	n, err := s.Count(ctx, CollectionTests, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestStaticRefusesWrites(t *testing.T) {
	ctx := context.Background()
	s := newStatic(t)

	_, err := s.Create(ctx, CollectionTests, models.Test{Code: "B12"})
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))

	_, err = s.UpdateOne(ctx, CollectionBookings, bson.M{"_id": "x"}, bson.M{"status": "cancelled"})
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))

	var booking models.Booking
	err = s.FindOne(ctx, CollectionBookings, bson.M{"_id": "x"}, &booking)
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
}

func TestStaticFindManyOtherCollectionsIsEmpty(t *testing.T) {
	var items []models.Booking
	require.NoError(t, newStatic(t).FindMany(context.Background(), CollectionBookings, bson.M{"user_id": "u1"}, &items))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
