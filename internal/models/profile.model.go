package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Platform string

const (
	PlatformTinder Platform = "tinder"
	PlatformHinge  Platform = "hinge"
	PlatformBumble Platform = "bumble"
)

// Profile is one dating-platform profile, keyed by the platform-issued
// external id. Synthetic cohort profiles carry Computed=true and are excluded
// from every population query used for cohort generation.
type Profile struct {
	BaseUUIDModel
	Platform   Platform `gorm:"type:text;not null;uniqueIndex:idx_profiles_platform_external" json:"platform"`
	ExternalID string   `gorm:"type:text;not null;uniqueIndex:idx_profiles_platform_external" json:"externalId"`

	// Nullable while the profile is anonymously owned.
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	User   *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// Demographic snapshot from the most recent export. Everything below the
	// required fields is schema-version-dependent and may be zero-valued.
	BirthDate    *time.Time `gorm:"type:date"  json:"birthDate,omitempty"`
	Gender       string     `gorm:"type:text"  json:"gender"`
	GenderFilter string     `gorm:"type:text"  json:"genderFilter"`
	InterestedIn string     `gorm:"type:text"  json:"interestedIn"`
	AgeFilterMin int        `gorm:"type:int"   json:"ageFilterMin"`
	AgeFilterMax int        `gorm:"type:int"   json:"ageFilterMax"`
	Bio          string     `gorm:"type:text"  json:"bio"`
	Education    string     `gorm:"type:text"  json:"education"`
	City         string     `gorm:"type:text"  json:"city"`
	Country      string     `gorm:"type:text"  json:"country"`
	Region       string     `gorm:"type:text"  json:"region"`
	PositionLat  float64    `gorm:"type:float" json:"positionLat"`
	PositionLon  float64    `gorm:"type:float" json:"positionLon"`

	Interests datatypes.JSON `gorm:"type:jsonb" json:"interests,omitempty"`

	// Export fields this core does not model yet, preserved opaquely so a
	// later processing pass can mine them without a redeploy.
	Extras datatypes.JSON `gorm:"type:jsonb" json:"extras,omitempty"`

	FirstActiveDay *time.Time `gorm:"type:date" json:"firstActiveDay,omitempty"`
	LastActiveDay  *time.Time `gorm:"type:date" json:"lastActiveDay,omitempty"`

	Computed bool `gorm:"type:bool;default:false;index" json:"computed"`
}

// Age returns the profile's age in whole years at the given time, or 0 when
// no birth date is known.
func (p *Profile) Age(at time.Time) int {
	if p.BirthDate == nil {
		return 0
	}
	years := at.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}
