package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	t.Run("Parses to UTC midnight", func(t *testing.T) {
		parsed, err := ParseDay("2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("Rejects malformed keys", func(t *testing.T) {
		_, err := ParseDay("15/01/2024")
		assert.Error(t, err)
	})

	t.Run("Round-trips through FormatDay", func(t *testing.T) {
		parsed, err := ParseDay("2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-15", FormatDay(parsed))
	})
}

func TestTruncateToDay(t *testing.T) {
	t.Run("Drops time of day", func(t *testing.T) {
		at := time.Date(2024, 1, 15, 23, 59, 58, 123, time.UTC)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), TruncateToDay(at))
	})

	t.Run("Midnight is a fixed point", func(t *testing.T) {
		midnight := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, midnight, TruncateToDay(midnight))
	})
}
