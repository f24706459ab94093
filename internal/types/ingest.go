package types

import (
	. "swipestats/internal/models"

	"github.com/google/uuid"
)

// OwnershipOutcome is the terminal state of ownership resolution at upload
// time. The non-error outcomes are the normal return path, never exceptions.
type OwnershipOutcome string

const (
	OutcomeCreate          OwnershipOutcome = "create"
	OutcomeAdditiveUpdate  OwnershipOutcome = "additive_update"
	OutcomeClaimThenUpdate OwnershipOutcome = "claim_then_update"
	OutcomeForbidden       OwnershipOutcome = "forbidden"
)

// GeoHint is an approximate caller location supplied by the transport layer.
// Used only to enrich the owning user, never the platform profile.
type GeoHint struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

// IngestRequest is one upload: a platform, the external profile id declared
// by the export, a blob reference to the raw (already anonymized) export, and
// the resolved caller identity.
type IngestRequest struct {
	Platform          Platform  `json:"platform"`
	ExternalID        string    `json:"externalId"`
	ExportURL         string    `json:"exportUrl"`
	CallerID          uuid.UUID `json:"callerId"`
	CallerIsAnonymous bool      `json:"callerIsAnonymous"`
	Geo               *GeoHint  `json:"geo,omitempty"`
}

// MergeRequest merges an older account's export into the caller's current
// profile. Confirmed acknowledges a previously returned
// IdentityMismatchWarning.
type MergeRequest struct {
	OldExternalID string    `json:"oldExternalId"`
	NewExternalID string    `json:"newExternalId"`
	ExportURL     string    `json:"exportUrl"`
	Platform      Platform  `json:"platform"`
	CallerID      uuid.UUID `json:"callerId"`
	Confirmed     bool      `json:"confirmed"`
}

// CohortGenerationResult summarizes one cohort's regeneration.
type CohortGenerationResult struct {
	Success          bool   `json:"success"`
	UsageDaysWritten int    `json:"usageDaysWritten"`
	Reason           string `json:"reason,omitempty"`
}

// BatchSummary is the end-of-run accounting for a cohort generation batch.
type BatchSummary struct {
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
