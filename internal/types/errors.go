// Package types holds the request, result, and error types exposed by the
// ingestion and aggregation core.
package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnauthorized    = errors.New("caller is not authorized for this profile")
)

// SchemaValidationError reports a malformed or missing required export field,
// naming the offending field path. Required fields are never silently
// defaulted.
type SchemaValidationError struct {
	Path   string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("export validation failed at %q: %s", e.Path, e.Reason)
}

// ConflictError is terminal: the profile already exists on create, or is
// owned by a non-transferable identity.
type ConflictError struct {
	ExternalID string
	Reason     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("profile %q: %s", e.ExternalID, e.Reason)
}

// ChronologyViolationError rejects a backward cross-account merge. Merges
// must proceed strictly older to newer; the user resolves this manually by
// deleting and re-uploading in chronological order.
type ChronologyViolationError struct {
	ExistingLastActive time.Time
	IncomingLastActive time.Time
}

func (e *ChronologyViolationError) Error() string {
	return fmt.Sprintf(
		"the export you are merging ends on %s, before your current profile's last activity on %s: "+
			"please upload your oldest account first, then merge newer accounts in order",
		e.IncomingLastActive.Format("2006-01-02"),
		e.ExistingLastActive.Format("2006-01-02"),
	)
}

// IdentityMismatchWarning flags a cross-account merge whose birth dates drift
// beyond the configured threshold. Non-terminal: the caller confirms and
// retries rather than being blocked, since platforms can legitimately correct
// a birth date.
type IdentityMismatchWarning struct {
	ExistingBirthDate time.Time
	IncomingBirthDate time.Time
	DriftYears        int
}

func (e *IdentityMismatchWarning) Error() string {
	return fmt.Sprintf(
		"the export you are merging has birth date %s but your profile has %s (more than %d year(s) apart): "+
			"this looks like a different person's account, confirm the merge to proceed",
		e.IncomingBirthDate.Format("2006-01-02"),
		e.ExistingBirthDate.Format("2006-01-02"),
		e.DriftYears,
	)
}

// InsufficientSampleError skips a cohort whose population or per-date sample
// is below the safety threshold. Non-fatal: the cohort is skipped, the batch
// continues.
type InsufficientSampleError struct {
	CohortName   string
	ProfileCount int
	Required     int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf(
		"cohort %q has %d matching profiles, need at least %d to aggregate",
		e.CohortName, e.ProfileCount, e.Required,
	)
}

// BadRequestError reports an invalid merge precondition (no existing profile,
// self-merge) in terms a non-technical user can act on.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}
