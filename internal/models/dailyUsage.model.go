package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyUsageRecord holds one calendar day of activity counters for a profile.
// Unique per (profile, date); re-ingesting a date overwrites, never sums.
type DailyUsageRecord struct {
	BaseUUIDModel
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_usage_profile_date" json:"profileId"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_usage_profile_date" json:"date"`

	AppOpens         int `gorm:"type:int;default:0" json:"appOpens"`
	SwipeLikes       int `gorm:"type:int;default:0" json:"swipeLikes"`
	SwipePasses      int `gorm:"type:int;default:0" json:"swipePasses"`
	SuperLikes       int `gorm:"type:int;default:0" json:"superLikes"`
	Matches          int `gorm:"type:int;default:0" json:"matches"`
	MessagesSent     int `gorm:"type:int;default:0" json:"messagesSent"`
	MessagesReceived int `gorm:"type:int;default:0" json:"messagesReceived"`

	// Derived from this day's own counts at write time. Nil when the
	// denominator is zero; never carried over or interpolated.
	LikeRate       *float64 `gorm:"type:float" json:"likeRate,omitempty"`
	MatchRate      *float64 `gorm:"type:float" json:"matchRate,omitempty"`
	ResponseRate   *float64 `gorm:"type:float" json:"responseRate,omitempty"`
	EngagementRate *float64 `gorm:"type:float" json:"engagementRate,omitempty"`
}

// CountsEqual reports whether two records carry the same raw counters.
// Derived rates are excluded since they are a function of the counts.
func (d *DailyUsageRecord) CountsEqual(other *DailyUsageRecord) bool {
	return d.AppOpens == other.AppOpens &&
		d.SwipeLikes == other.SwipeLikes &&
		d.SwipePasses == other.SwipePasses &&
		d.SuperLikes == other.SuperLikes &&
		d.Matches == other.Matches &&
		d.MessagesSent == other.MessagesSent &&
		d.MessagesReceived == other.MessagesReceived
}

// CopyCountsFrom overwrites this record's counters and rates with the
// incoming record's values, keeping identity fields intact.
func (d *DailyUsageRecord) CopyCountsFrom(other *DailyUsageRecord) {
	d.AppOpens = other.AppOpens
	d.SwipeLikes = other.SwipeLikes
	d.SwipePasses = other.SwipePasses
	d.SuperLikes = other.SuperLikes
	d.Matches = other.Matches
	d.MessagesSent = other.MessagesSent
	d.MessagesReceived = other.MessagesReceived
	d.LikeRate = other.LikeRate
	d.MatchRate = other.MatchRate
	d.ResponseRate = other.ResponseRate
	d.EngagementRate = other.EngagementRate
}
