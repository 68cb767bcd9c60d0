package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAmount(t *testing.T) {
	d, err := DecodeAmount([]byte(`149.5`))
	require.NoError(t, err)
	assert.Equal(t, "149.5", d.String())

	d, err = DecodeAmount([]byte(`"20"`))
	require.NoError(t, err)
	assert.Equal(t, "20", d.String())

	for _, raw := range []string{``, `null`, `""`, `  `} {
		_, err = DecodeAmount([]byte(raw))
		assert.ErrorIs(t, err, ErrMissing, raw)
	}
	for _, raw := range []string{`"abc"`, `true`, `[1]`} {
		_, err = DecodeAmount([]byte(raw))
		assert.ErrorIs(t, err, ErrNotNumeric, raw)
	}
}

func TestDecodeQuantity(t *testing.T) {
	q, err := DecodeQuantity([]byte(`3`))
	require.NoError(t, err)
	assert.Equal(t, 3, q)

	q, err = DecodeQuantity([]byte(`"2.0"`))
	require.NoError(t, err)
	assert.Equal(t, 2, q)

	_, err = DecodeQuantity([]byte(`1.5`))
	assert.ErrorIs(t, err, ErrNotNumeric)
	_, err = DecodeQuantity([]byte(`99999999999`))
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestCleanText(t *testing.T) {
	// "e" followed by a combining acute accent composes to one rune.
	s := CleanText("  Cafe\u0301 Special \n")
	assert.Equal(t, "Caf\u00e9 Special", s)
	assert.False(t, TooLong(s, 12))
	assert.True(t, TooLong(s, 11))
}
