package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageDirection string

const (
	DirectionSent     MessageDirection = "sent"
	DirectionReceived MessageDirection = "received"
)

type MessageType string

const (
	MessageTypeText      MessageType = "TEXT"
	MessageTypeGif       MessageType = "GIF"
	MessageTypeGesture   MessageType = "GESTURE"
	MessageTypeVoiceNote MessageType = "VOICE_NOTE"
	MessageTypeActivity  MessageType = "ACTIVITY"
	MessageTypeOther     MessageType = "OTHER"
)

// Match is one platform-issued match. Deduplicated by the platform match id
// within a profile.
type Match struct {
	BaseUUIDModel
	ProfileID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_matches_profile_platform_id" json:"profileId"`
	PlatformMatchID string    `gorm:"type:text;not null;uniqueIndex:idx_matches_profile_platform_id" json:"platformMatchId"`

	MatchedAt *time.Time `gorm:"type:timestamp" json:"matchedAt,omitempty"`

	Messages []Message `gorm:"foreignKey:MatchID" json:"messages"`
}

// Message belongs to exactly one match. Platforms issue no message ids, so
// messages dedupe on DedupKey (timestamp + direction + content hash). Two
// genuinely distinct messages with identical content, direction, and recorded
// second would collapse into one; accepted approximation.
type Message struct {
	BaseUUIDModel
	MatchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_messages_match_dedup" json:"matchId"`
	DedupKey string    `gorm:"type:text;not null;uniqueIndex:idx_messages_match_dedup" json:"dedupKey"`

	Direction   MessageDirection `gorm:"type:text;not null"  json:"direction"`
	Type        MessageType      `gorm:"type:text;not null"  json:"type"`
	SentAt      time.Time        `gorm:"type:timestamp"      json:"sentAt"`
	ContentHash string           `gorm:"type:text"           json:"contentHash"`
	CharCount   int              `gorm:"type:int;default:0"  json:"charCount"`
}

// NormalizeMessageType maps a raw export type string onto the closed enum.
// Unrecognized strings become OTHER rather than failing extraction.
func NormalizeMessageType(raw string) MessageType {
	switch raw {
	case "text", "TEXT", "":
		return MessageTypeText
	case "gif", "GIF":
		return MessageTypeGif
	case "gesture", "GESTURE", "like_gesture":
		return MessageTypeGesture
	case "voice", "voice_note", "VOICE_NOTE", "audio":
		return MessageTypeVoiceNote
	case "activity", "ACTIVITY", "game":
		return MessageTypeActivity
	default:
		return MessageTypeOther
	}
}
