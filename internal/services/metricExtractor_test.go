package services

import (
	"testing"
	"time"

	"swipestats/internal/imports"
	. "swipestats/internal/models"
	"swipestats/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDailyUsage(t *testing.T) {
	t.Run("Dates union across maps with zero fill", func(t *testing.T) {
		records := extractDailyUsage(imports.UsageCounters{
			AppOpens:         map[string]int{"2024-01-01": 3},
			SwipeLikes:       map[string]int{"2024-01-02": 7},
			SwipePasses:      map[string]int{},
			SuperLikes:       map[string]int{},
			Matches:          map[string]int{},
			MessagesSent:     map[string]int{},
			MessagesReceived: map[string]int{},
		})
		require.Len(t, records, 2)

		assert.Equal(t, "2024-01-01", utils.FormatDay(records[0].Date))
		assert.Equal(t, 3, records[0].AppOpens)
		assert.Equal(t, 0, records[0].SwipeLikes)

		assert.Equal(t, "2024-01-02", utils.FormatDay(records[1].Date))
		assert.Equal(t, 0, records[1].AppOpens)
		assert.Equal(t, 7, records[1].SwipeLikes)
	})

	t.Run("Malformed date keys are skipped", func(t *testing.T) {
		records := extractDailyUsage(imports.UsageCounters{
			AppOpens: map[string]int{"2024-01-01": 1, "garbage": 9},
		})
		require.Len(t, records, 1)
		assert.Equal(t, "2024-01-01", utils.FormatDay(records[0].Date))
	})
}

func TestDeriveDailyRates(t *testing.T) {
	t.Run("All denominators present", func(t *testing.T) {
		record := &DailyUsageRecord{
			AppOpens:         10,
			SwipeLikes:       30,
			SwipePasses:      70,
			Matches:          3,
			MessagesSent:     8,
			MessagesReceived: 4,
		}
		deriveDailyRates(record)

		require.NotNil(t, record.LikeRate)
		assert.InDelta(t, 0.3, *record.LikeRate, 0.0001)
		require.NotNil(t, record.MatchRate)
		assert.InDelta(t, 0.1, *record.MatchRate, 0.0001)
		require.NotNil(t, record.ResponseRate)
		assert.InDelta(t, 0.5, *record.ResponseRate, 0.0001)
		require.NotNil(t, record.EngagementRate)
		assert.InDelta(t, 1.2, *record.EngagementRate, 0.0001)
	})

	t.Run("Zero denominators yield nil, not zero", func(t *testing.T) {
		record := &DailyUsageRecord{}
		deriveDailyRates(record)

		assert.Nil(t, record.LikeRate)
		assert.Nil(t, record.MatchRate)
		assert.Nil(t, record.ResponseRate)
		assert.Nil(t, record.EngagementRate)
	})
}

func TestExtractMatches(t *testing.T) {
	sentAt := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	t.Run("Messages carry dedup key and derived fields", func(t *testing.T) {
		matches := extractMatches([]imports.CanonicalMatch{
			{
				PlatformMatchID: "m1",
				Messages: []imports.CanonicalMessage{
					{SentAt: sentAt, Direction: DirectionSent, Type: MessageTypeText, Content: "hey there"},
				},
			},
		})
		require.Len(t, matches, 1)
		require.Len(t, matches[0].Messages, 1)

		msg := matches[0].Messages[0]
		assert.Equal(t, utils.ContentHash("hey there"), msg.ContentHash)
		assert.Equal(t, utils.MessageDedupKey(sentAt, string(DirectionSent), msg.ContentHash), msg.DedupKey)
		assert.Equal(t, 9, msg.CharCount)
	})

	t.Run("Duplicate messages within one export collapse", func(t *testing.T) {
		duplicate := imports.CanonicalMessage{
			SentAt: sentAt, Direction: DirectionSent, Type: MessageTypeText, Content: "hey",
		}
		matches := extractMatches([]imports.CanonicalMatch{
			{PlatformMatchID: "m1", Messages: []imports.CanonicalMessage{duplicate, duplicate}},
		})
		require.Len(t, matches, 1)
		assert.Len(t, matches[0].Messages, 1)
	})

	t.Run("Same timestamp and content but different direction both survive", func(t *testing.T) {
		matches := extractMatches([]imports.CanonicalMatch{
			{
				PlatformMatchID: "m1",
				Messages: []imports.CanonicalMessage{
					{SentAt: sentAt, Direction: DirectionSent, Type: MessageTypeText, Content: "lol"},
					{SentAt: sentAt, Direction: DirectionReceived, Type: MessageTypeText, Content: "lol"},
				},
			},
		})
		require.Len(t, matches, 1)
		assert.Len(t, matches[0].Messages, 2)
	})
}

func TestActiveDayBounds(t *testing.T) {
	t.Run("Min and max over app open dates", func(t *testing.T) {
		first, last := activeDayBounds(map[string]int{
			"2024-03-10": 1,
			"2024-01-05": 2,
			"2024-02-20": 3,
		})
		require.NotNil(t, first)
		require.NotNil(t, last)
		assert.Equal(t, "2024-01-05", utils.FormatDay(*first))
		assert.Equal(t, "2024-03-10", utils.FormatDay(*last))
	})

	t.Run("Empty map yields nil bounds", func(t *testing.T) {
		first, last := activeDayBounds(map[string]int{})
		assert.Nil(t, first)
		assert.Nil(t, last)
	})
}
