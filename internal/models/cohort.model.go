package models

import (
	"time"
)

// CohortDefinition is a named demographic filter used to group real profiles
// for aggregate statistics. Each definition owns exactly one synthetic
// profile whose external id derives deterministically from the cohort id, so
// regeneration is idempotent.
type CohortDefinition struct {
	BaseUUIDModel
	Name     string   `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Platform Platform `gorm:"type:text;not null"             json:"platform"`

	Gender  *string `gorm:"type:text" json:"gender,omitempty"`
	AgeMin  *int    `gorm:"type:int"  json:"ageMin,omitempty"`
	AgeMax  *int    `gorm:"type:int"  json:"ageMax,omitempty"`
	Country *string `gorm:"type:text" json:"country,omitempty"`
	Region  *string `gorm:"type:text" json:"region,omitempty"`

	ProfileCount   int        `gorm:"type:int;default:0" json:"profileCount"`
	LastComputedAt *time.Time `gorm:"type:timestamp"     json:"lastComputedAt,omitempty"`
}

// SyntheticExternalID is the external id of the cohort's generated profile.
func (c *CohortDefinition) SyntheticExternalID() string {
	return "cohort-" + c.ID.String()
}
