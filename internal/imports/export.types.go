// Package imports holds the raw dating-platform export shapes and the
// canonical form they normalize into.
package imports

import (
	"encoding/json"
	"time"

	"swipestats/internal/models"
)

// RawUserSection is the demographic section of an export as it arrives off
// the wire. Required fields are validated by the normalizer; optional fields
// degrade to documented defaults. Interests is left raw because it appears in
// two historical shapes (see InterestEntry).
type RawUserSection struct {
	BirthDate    *string         `json:"birth_date"`
	Gender       *string         `json:"gender"`
	GenderFilter *string         `json:"gender_filter"`
	InterestedIn *string         `json:"interested_in"`
	AgeFilterMin *int            `json:"age_filter_min"`
	AgeFilterMax *int            `json:"age_filter_max"`
	Bio          *string         `json:"bio"`
	Education    *string         `json:"education"`
	City         *string         `json:"city"`
	Country      *string         `json:"country"`
	Region       *string         `json:"region"`
	Position     *RawPosition    `json:"position"`
	Interests    json.RawMessage `json:"interests"`
}

type RawPosition struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// InterestEntry is the richer of the two historical interest shapes. Older
// exports carry a bare list of name strings instead.
type InterestEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawUsageSection carries the parallel per-day count maps keyed by
// YYYY-MM-DD date strings.
type RawUsageSection struct {
	AppOpens         map[string]int `json:"app_opens"`
	SwipeLikes       map[string]int `json:"swipes_likes"`
	SwipePasses      map[string]int `json:"swipes_passes"`
	SuperLikes       map[string]int `json:"superlikes"`
	Matches          map[string]int `json:"matches"`
	MessagesSent     map[string]int `json:"messages_sent"`
	MessagesReceived map[string]int `json:"messages_received"`
}

type RawMatch struct {
	MatchID   string       `json:"match_id"`
	MatchedAt *string      `json:"matched_at"`
	Messages  []RawMessage `json:"messages"`
}

type RawMessage struct {
	SentDate  string `json:"sent_date"`
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// CanonicalExport is the normalized internal shape every platform export
// decodes into, whatever version produced it.
type CanonicalExport struct {
	Platform     models.Platform
	Demographics Demographics
	Usage        UsageCounters
	Matches      []CanonicalMatch

	// Top-level sections and user fields not explicitly modeled, preserved
	// opaquely for a later processing pass.
	Extras map[string]json.RawMessage
}

type Demographics struct {
	BirthDate    time.Time
	Gender       string
	GenderFilter string
	InterestedIn string
	AgeFilterMin int
	AgeFilterMax int
	Bio          string
	Education    string
	City         string
	Country      string
	Region       string
	PositionLat  float64
	PositionLon  float64
	Interests    []string
}

type UsageCounters struct {
	AppOpens         map[string]int
	SwipeLikes       map[string]int
	SwipePasses      map[string]int
	SuperLikes       map[string]int
	Matches          map[string]int
	MessagesSent     map[string]int
	MessagesReceived map[string]int
}

type CanonicalMatch struct {
	PlatformMatchID string
	MatchedAt       *time.Time
	Messages        []CanonicalMessage
}

type CanonicalMessage struct {
	SentAt    time.Time
	Direction models.MessageDirection
	Type      models.MessageType
	Content   string
}
