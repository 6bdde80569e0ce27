package chat

import (
	"errors"
	"testing"
	"time"

	"healthlab-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingPayload(t *testing.T) {
	in, err := ParseBookingPayload(map[string]interface{}{
		"user_id":      "u1",
		"test_code":    "CBC",
		"scheduled_at": "2026-03-01T10:00:00",
		"address":      "12 Lake Road",
	}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "u1", in.UserID)
	assert.Equal(t, "CBC", in.TestCode)
	assert.True(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Equal(in.ScheduledAt))
	require.NotNil(t, in.Address)
	assert.Equal(t, "12 Lake Road", *in.Address)
	assert.Nil(t, in.PromoCode)
}

func TestParseBookingPayloadErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]interface{}
		field   string
	}{
		{"missing user", map[string]interface{}{"test_code": "CBC", "scheduled_at": "2026-03-01T10:00:00"}, "user_id"},
		{"missing code", map[string]interface{}{"user_id": "u1", "scheduled_at": "2026-03-01T10:00:00"}, "test_code"},
		{"missing date", map[string]interface{}{"user_id": "u1", "test_code": "CBC"}, "scheduled_at"},
		{"bad date", map[string]interface{}{"user_id": "u1", "test_code": "CBC", "scheduled_at": "tomorrow 10am"}, "scheduled_at"},
		{"numeric code", map[string]interface{}{"user_id": "u1", "test_code": 12.0, "scheduled_at": "2026-03-01T10:00:00"}, "test_code"},
		{"address not string", map[string]interface{}{"user_id": "u1", "test_code": "CBC", "scheduled_at": "2026-03-01T10:00:00", "address": true}, "address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBookingPayload(tc.payload, time.UTC)
			var perr *PayloadError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.field, perr.Field)
			assert.True(t, errors.Is(err, apperr.ErrBadRequest))
		})
	}
}
