package models

// User is the owning identity for profiles. Authentication happens upstream;
// this core only consumes the resolved user id and anonymity flag.
type User struct {
	BaseUUIDModel
	IsAnonymous bool `gorm:"type:bool;default:false" json:"isAnonymous"`

	// Approximate location from the optional geolocation hint supplied at
	// upload time. Enriches the user, never the platform profile.
	City    *string `gorm:"type:text" json:"city,omitempty"`
	Country *string `gorm:"type:text" json:"country,omitempty"`
	Region  *string `gorm:"type:text" json:"region,omitempty"`
}
