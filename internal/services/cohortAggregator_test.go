package services

import (
	"testing"

	. "swipestats/internal/models"
	"swipestats/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cohortUsageRow(t *testing.T, day string, appOpens int, likeRate *float64) *DailyUsageRecord {
	t.Helper()
	date, err := utils.ParseDay(day)
	require.NoError(t, err)
	return &DailyUsageRecord{
		Date:     date,
		AppOpens: appOpens,
		LikeRate: likeRate,
	}
}

func rate(value float64) *float64 {
	return &value
}

func TestAggregateUsageByDate(t *testing.T) {
	t.Run("Counts take the mean, rates the median", func(t *testing.T) {
		rows := []*DailyUsageRecord{
			cohortUsageRow(t, "2024-01-01", 10, rate(0.1)),
			cohortUsageRow(t, "2024-01-01", 20, rate(0.9)),
			cohortUsageRow(t, "2024-01-01", 30, rate(0.5)),
		}

		synthetic := aggregateUsageByDate(rows, 3)
		require.Len(t, synthetic, 1)

		assert.Equal(t, 20, synthetic[0].AppOpens)
		require.NotNil(t, synthetic[0].LikeRate)
		assert.InDelta(t, 0.5, *synthetic[0].LikeRate, 0.0001)
	})

	t.Run("Dates below the per-date sample are dropped", func(t *testing.T) {
		rows := []*DailyUsageRecord{
			cohortUsageRow(t, "2024-01-01", 10, nil),
			cohortUsageRow(t, "2024-01-01", 20, nil),
			cohortUsageRow(t, "2024-01-01", 30, nil),
			cohortUsageRow(t, "2024-01-02", 40, nil),
			cohortUsageRow(t, "2024-01-02", 50, nil),
		}

		synthetic := aggregateUsageByDate(rows, 3)
		require.Len(t, synthetic, 1)
		assert.Equal(t, "2024-01-01", utils.FormatDay(synthetic[0].Date))
	})

	t.Run("Output is date ordered", func(t *testing.T) {
		rows := []*DailyUsageRecord{
			cohortUsageRow(t, "2024-02-01", 1, nil),
			cohortUsageRow(t, "2024-02-01", 2, nil),
			cohortUsageRow(t, "2024-01-15", 3, nil),
			cohortUsageRow(t, "2024-01-15", 4, nil),
		}

		synthetic := aggregateUsageByDate(rows, 2)
		require.Len(t, synthetic, 2)
		assert.Equal(t, "2024-01-15", utils.FormatDay(synthetic[0].Date))
		assert.Equal(t, "2024-02-01", utils.FormatDay(synthetic[1].Date))
	})

	t.Run("Empty input yields no rows", func(t *testing.T) {
		assert.Empty(t, aggregateUsageByDate(nil, 3))
	})
}

func TestMeanInt(t *testing.T) {
	members := func(values ...int) []*DailyUsageRecord {
		rows := make([]*DailyUsageRecord, len(values))
		for i, value := range values {
			rows[i] = &DailyUsageRecord{AppOpens: value}
		}
		return rows
	}
	appOpens := func(r *DailyUsageRecord) int { return r.AppOpens }

	t.Run("Exact mean", func(t *testing.T) {
		assert.Equal(t, 20, meanInt(members(10, 20, 30), appOpens))
	})

	t.Run("Rounds to nearest integer", func(t *testing.T) {
		assert.Equal(t, 3, meanInt(members(2, 3, 3), appOpens))
		assert.Equal(t, 2, meanInt(members(2, 2, 3), appOpens))
	})

	t.Run("No members is zero", func(t *testing.T) {
		assert.Equal(t, 0, meanInt(nil, appOpens))
	})
}

func TestMedianRate(t *testing.T) {
	members := func(values ...*float64) []*DailyUsageRecord {
		rows := make([]*DailyUsageRecord, len(values))
		for i, value := range values {
			rows[i] = &DailyUsageRecord{LikeRate: value}
		}
		return rows
	}
	likeRate := func(r *DailyUsageRecord) *float64 { return r.LikeRate }

	t.Run("Odd count takes the middle value", func(t *testing.T) {
		median := medianRate(members(rate(0.9), rate(0.1), rate(0.5)), likeRate)
		require.NotNil(t, median)
		assert.InDelta(t, 0.5, *median, 0.0001)
	})

	t.Run("Even count averages the middle pair", func(t *testing.T) {
		median := medianRate(members(rate(0.2), rate(0.4), rate(0.6), rate(0.8)), likeRate)
		require.NotNil(t, median)
		assert.InDelta(t, 0.5, *median, 0.0001)
	})

	t.Run("Nil rates are excluded from the sample", func(t *testing.T) {
		median := medianRate(members(nil, rate(0.3), nil), likeRate)
		require.NotNil(t, median)
		assert.InDelta(t, 0.3, *median, 0.0001)
	})

	t.Run("All nil stays nil", func(t *testing.T) {
		assert.Nil(t, medianRate(members(nil, nil), likeRate))
	})
}
