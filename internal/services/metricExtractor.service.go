package services

import (
	"sort"
	"time"

	"swipestats/internal/imports"
	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/utils"
)

// ExtractedMetrics is everything the merge engine needs from one export.
// Profile ids are attached later, once ownership resolution has decided where
// the data lands.
type ExtractedMetrics struct {
	DailyUsage     []*DailyUsageRecord
	Matches        []*Match
	Demographics   imports.Demographics
	FirstActiveDay *time.Time
	LastActiveDay  *time.Time
}

// MetricExtractorService derives daily usage rows, match/message records, and
// demographic fields from a canonical export. Pure transform.
type MetricExtractorService struct {
	log logger.Logger
}

func NewMetricExtractorService() *MetricExtractorService {
	return &MetricExtractorService{
		log: logger.New("metricExtractorService"),
	}
}

func (s *MetricExtractorService) Extract(export *imports.CanonicalExport) *ExtractedMetrics {
	log := s.log.Function("Extract")

	metrics := &ExtractedMetrics{
		Demographics: export.Demographics,
		DailyUsage:   extractDailyUsage(export.Usage),
		Matches:      extractMatches(export.Matches),
	}
	metrics.FirstActiveDay, metrics.LastActiveDay = activeDayBounds(export.Usage.AppOpens)

	log.Info("Extracted metrics",
		"usageDays", len(metrics.DailyUsage),
		"matches", len(metrics.Matches))
	return metrics
}

// extractDailyUsage folds the parallel per-day count maps into one record per
// date. A date present in any map produces a record; counts missing from a
// sibling map are zero, not missing.
func extractDailyUsage(usage imports.UsageCounters) []*DailyUsageRecord {
	days := map[string]bool{}
	for _, counts := range []map[string]int{
		usage.AppOpens,
		usage.SwipeLikes,
		usage.SwipePasses,
		usage.SuperLikes,
		usage.Matches,
		usage.MessagesSent,
		usage.MessagesReceived,
	} {
		for day := range counts {
			days[day] = true
		}
	}

	records := make([]*DailyUsageRecord, 0, len(days))
	for day := range days {
		date, err := utils.ParseDay(day)
		if err != nil {
			// Malformed date keys cannot anchor a calendar row; skip them.
			continue
		}

		record := &DailyUsageRecord{
			Date:             date,
			AppOpens:         usage.AppOpens[day],
			SwipeLikes:       usage.SwipeLikes[day],
			SwipePasses:      usage.SwipePasses[day],
			SuperLikes:       usage.SuperLikes[day],
			Matches:          usage.Matches[day],
			MessagesSent:     usage.MessagesSent[day],
			MessagesReceived: usage.MessagesReceived[day],
		}
		deriveDailyRates(record)
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records
}

// deriveDailyRates computes each rate from the day's own counts. Rates are
// nil when the denominator is zero; never carried over from another day,
// never interpolated.
func deriveDailyRates(record *DailyUsageRecord) {
	record.LikeRate = utils.Rate(record.SwipeLikes, record.SwipeLikes+record.SwipePasses)
	record.MatchRate = utils.Rate(record.Matches, record.SwipeLikes)
	record.ResponseRate = utils.Rate(record.MessagesReceived, record.MessagesSent)
	record.EngagementRate = utils.Rate(record.MessagesSent+record.MessagesReceived, record.AppOpens)
}

func extractMatches(canonical []imports.CanonicalMatch) []*Match {
	matches := make([]*Match, 0, len(canonical))
	for _, cm := range canonical {
		match := &Match{
			PlatformMatchID: cm.PlatformMatchID,
			MatchedAt:       cm.MatchedAt,
		}

		seen := map[string]bool{}
		for _, msg := range cm.Messages {
			contentHash := utils.ContentHash(msg.Content)
			dedupKey := utils.MessageDedupKey(msg.SentAt, string(msg.Direction), contentHash)
			if seen[dedupKey] {
				continue
			}
			seen[dedupKey] = true

			match.Messages = append(match.Messages, Message{
				DedupKey:    dedupKey,
				Direction:   msg.Direction,
				Type:        msg.Type,
				SentAt:      msg.SentAt,
				ContentHash: contentHash,
				CharCount:   len(msg.Content),
			})
		}

		matches = append(matches, match)
	}
	return matches
}

// activeDayBounds finds the min/max date across the app-open map. These
// anchor the chronological ordering check for cross-account merges.
func activeDayBounds(appOpens map[string]int) (*time.Time, *time.Time) {
	var first, last *time.Time
	for day := range appOpens {
		date, err := utils.ParseDay(day)
		if err != nil {
			continue
		}
		if first == nil || date.Before(*first) {
			d := date
			first = &d
		}
		if last == nil || date.After(*last) {
			d := date
			last = &d
		}
	}
	return first, last
}
