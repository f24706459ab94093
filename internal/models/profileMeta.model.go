package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileMeta is a denormalized rollup over a profile's usage, match, and
// message data. Always regenerated in full after a write, never patched.
type ProfileMeta struct {
	BaseUUIDModel
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"profileId"`

	ActiveDays            int `gorm:"type:int;default:0" json:"activeDays"`
	TotalAppOpens         int `gorm:"type:int;default:0" json:"totalAppOpens"`
	TotalSwipeLikes       int `gorm:"type:int;default:0" json:"totalSwipeLikes"`
	TotalSwipePasses      int `gorm:"type:int;default:0" json:"totalSwipePasses"`
	TotalSuperLikes       int `gorm:"type:int;default:0" json:"totalSuperLikes"`
	TotalMatches          int `gorm:"type:int;default:0" json:"totalMatches"`
	TotalMessagesSent     int `gorm:"type:int;default:0" json:"totalMessagesSent"`
	TotalMessagesReceived int `gorm:"type:int;default:0" json:"totalMessagesReceived"`

	// Rounded to four decimal places at write time.
	LikeRate       float64 `gorm:"type:float;default:0" json:"likeRate"`
	MatchRate      float64 `gorm:"type:float;default:0" json:"matchRate"`
	ResponseRate   float64 `gorm:"type:float;default:0" json:"responseRate"`
	EngagementRate float64 `gorm:"type:float;default:0" json:"engagementRate"`
	SwipesPerDay   float64 `gorm:"type:float;default:0" json:"swipesPerDay"`

	// Conversation statistics over the match/message data.
	Conversations           int     `gorm:"type:int;default:0"   json:"conversations"`
	ConversationRate        float64 `gorm:"type:float;default:0" json:"conversationRate"`
	MessagesPerConversation float64 `gorm:"type:float;default:0" json:"messagesPerConversation"`

	FirstActiveDay *time.Time `gorm:"type:date" json:"firstActiveDay,omitempty"`
	LastActiveDay  *time.Time `gorm:"type:date" json:"lastActiveDay,omitempty"`
}
