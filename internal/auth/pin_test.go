package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePINPlain(t *testing.T) {
	assert.NoError(t, ComparePIN("1234", "1234"))
	assert.ErrorIs(t, ComparePIN("1234", "9999"), ErrPINMismatch)
	assert.ErrorIs(t, ComparePIN("1234", "12345"), ErrPINMismatch)
	assert.ErrorIs(t, ComparePIN("", ""), ErrPINMismatch)
	assert.ErrorIs(t, ComparePIN("1234", ""), ErrPINMismatch)
}

func TestComparePINHashed(t *testing.T) {
	hash, err := HashPIN("4321")
	require.NoError(t, err)

	assert.NoError(t, ComparePIN(hash, "4321"))
	assert.ErrorIs(t, ComparePIN(hash, "1234"), ErrPINMismatch)
	assert.ErrorIs(t, ComparePIN(hash, hash), ErrPINMismatch)
}

func TestHashPINRejectsEmpty(t *testing.T) {
	_, err := HashPIN("")
	assert.Error(t, err)
}
