package services

import (
	"encoding/json"
	"time"

	"swipestats/internal/imports"
	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/types"
)

// ExportNormalizerService decodes raw export JSON into the canonical internal
// shape. Pure transform: required fields fail hard with a field path,
// optional fields degrade to documented defaults, and anything not modeled is
// preserved opaquely.
type ExportNormalizerService struct {
	log logger.Logger
}

func NewExportNormalizerService() *ExportNormalizerService {
	return &ExportNormalizerService{
		log: logger.New("exportNormalizerService"),
	}
}

// Top-level sections this core models. Everything else rides along in Extras.
var modeledSections = map[string]bool{
	"user":     true,
	"usage":    true,
	"messages": true,
}

func (s *ExportNormalizerService) Normalize(
	platform Platform,
	raw []byte,
) (*imports.CanonicalExport, error) {
	log := s.log.Function("Normalize")

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, &types.SchemaValidationError{Path: "$", Reason: "document is not a JSON object"}
	}

	export := &imports.CanonicalExport{
		Platform: platform,
		Extras:   make(map[string]json.RawMessage),
	}

	// Additive schema drift: newer export versions add sections we have not
	// modeled yet. Preserve them for a later processing pass.
	for key, value := range sections {
		if !modeledSections[key] {
			export.Extras[key] = value
		}
	}

	demographics, err := s.normalizeUser(sections["user"], export.Extras)
	if err != nil {
		return nil, err
	}
	export.Demographics = *demographics

	usage, err := s.normalizeUsage(sections["usage"])
	if err != nil {
		return nil, err
	}
	export.Usage = *usage

	matches, dropped := s.normalizeMatches(sections["messages"])
	export.Matches = matches
	if dropped > 0 {
		log.Warn("Dropped matches without a platform match id", "dropped", dropped)
	}

	log.Info("Normalized export",
		"platform", platform,
		"matches", len(export.Matches),
		"extraSections", len(export.Extras))
	return export, nil
}

func (s *ExportNormalizerService) normalizeUser(
	raw json.RawMessage,
	extras map[string]json.RawMessage,
) (*imports.Demographics, error) {
	if len(raw) == 0 {
		return nil, &types.SchemaValidationError{Path: "user", Reason: "missing required section"}
	}

	var user imports.RawUserSection
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &types.SchemaValidationError{Path: "user", Reason: "section is not a JSON object"}
	}

	// Unknown per-object fields are additive drift too; keep them.
	var userFields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &userFields); err == nil {
		for key, value := range userFields {
			if !modeledUserFields[key] {
				extras["user."+key] = value
			}
		}
	}

	if user.BirthDate == nil || *user.BirthDate == "" {
		return nil, &types.SchemaValidationError{Path: "user.birth_date", Reason: "missing required field"}
	}
	birthDate, err := parseExportTimestamp(*user.BirthDate)
	if err != nil {
		return nil, &types.SchemaValidationError{Path: "user.birth_date", Reason: "unrecognized date format"}
	}

	if user.Gender == nil || *user.Gender == "" {
		return nil, &types.SchemaValidationError{Path: "user.gender", Reason: "missing required field"}
	}
	if user.GenderFilter == nil || *user.GenderFilter == "" {
		return nil, &types.SchemaValidationError{Path: "user.gender_filter", Reason: "missing required field"}
	}
	if user.InterestedIn == nil || *user.InterestedIn == "" {
		return nil, &types.SchemaValidationError{Path: "user.interested_in", Reason: "missing required field"}
	}
	if user.AgeFilterMin == nil {
		return nil, &types.SchemaValidationError{Path: "user.age_filter_min", Reason: "missing required field"}
	}
	if user.AgeFilterMax == nil {
		return nil, &types.SchemaValidationError{Path: "user.age_filter_max", Reason: "missing required field"}
	}

	demographics := &imports.Demographics{
		BirthDate:    birthDate,
		Gender:       *user.Gender,
		GenderFilter: *user.GenderFilter,
		InterestedIn: *user.InterestedIn,
		AgeFilterMin: *user.AgeFilterMin,
		AgeFilterMax: *user.AgeFilterMax,
	}

	// Optional fields degrade to defaults: empty strings, position (0,0).
	demographics.Bio = stringOrDefault(user.Bio)
	demographics.Education = stringOrDefault(user.Education)
	demographics.City = stringOrDefault(user.City)
	demographics.Country = stringOrDefault(user.Country)
	demographics.Region = stringOrDefault(user.Region)
	if user.Position != nil {
		demographics.PositionLat = user.Position.Lat
		demographics.PositionLon = user.Position.Lon
	}

	interests, ok := decodeInterests(user.Interests)
	if !ok {
		// Unrecognized third shape: keep it opaque rather than reject.
		extras["user.interests"] = user.Interests
	}
	demographics.Interests = interests

	return demographics, nil
}

var modeledUserFields = map[string]bool{
	"birth_date":     true,
	"gender":         true,
	"gender_filter":  true,
	"interested_in":  true,
	"age_filter_min": true,
	"age_filter_max": true,
	"bio":            true,
	"education":      true,
	"city":           true,
	"country":        true,
	"region":         true,
	"position":       true,
	"interests":      true,
}

// decodeInterests handles the two historical interest shapes: a bare list of
// name strings, or a list of richer objects carrying the same names plus
// metadata. The shape is detected structurally; platforms supply no reliable
// version field. Both decode into a plain name list.
func decodeInterests(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, true
	}

	var asStrings []string
	if err := json.Unmarshal(raw, &asStrings); err == nil {
		return asStrings, true
	}

	var asEntries []imports.InterestEntry
	if err := json.Unmarshal(raw, &asEntries); err == nil {
		names := make([]string, 0, len(asEntries))
		for _, entry := range asEntries {
			if entry.Name != "" {
				names = append(names, entry.Name)
			}
		}
		return names, true
	}

	return nil, false
}

func (s *ExportNormalizerService) normalizeUsage(
	raw json.RawMessage,
) (*imports.UsageCounters, error) {
	usage := &imports.UsageCounters{}

	if len(raw) > 0 {
		var section imports.RawUsageSection
		if err := json.Unmarshal(raw, &section); err != nil {
			return nil, &types.SchemaValidationError{Path: "usage", Reason: "section is not a JSON object"}
		}
		usage.AppOpens = section.AppOpens
		usage.SwipeLikes = section.SwipeLikes
		usage.SwipePasses = section.SwipePasses
		usage.SuperLikes = section.SuperLikes
		usage.Matches = section.Matches
		usage.MessagesSent = section.MessagesSent
		usage.MessagesReceived = section.MessagesReceived
	}

	// Missing maps degrade to empty, never nil, so extraction can treat
	// absent dates as zero.
	ensure := func(m *map[string]int) {
		if *m == nil {
			*m = map[string]int{}
		}
	}
	ensure(&usage.AppOpens)
	ensure(&usage.SwipeLikes)
	ensure(&usage.SwipePasses)
	ensure(&usage.SuperLikes)
	ensure(&usage.Matches)
	ensure(&usage.MessagesSent)
	ensure(&usage.MessagesReceived)

	return usage, nil
}

// normalizeMatches decodes the nested match/message list. Matches lacking a
// platform id cannot be deduplicated and are dropped (returned count lets the
// caller log them); unparseable message timestamps drop just that message.
func (s *ExportNormalizerService) normalizeMatches(
	raw json.RawMessage,
) ([]imports.CanonicalMatch, int) {
	if len(raw) == 0 {
		return nil, 0
	}

	var rawMatches []imports.RawMatch
	if err := json.Unmarshal(raw, &rawMatches); err != nil {
		return nil, 0
	}

	dropped := 0
	matches := make([]imports.CanonicalMatch, 0, len(rawMatches))
	for _, rawMatch := range rawMatches {
		if rawMatch.MatchID == "" {
			dropped++
			continue
		}

		match := imports.CanonicalMatch{
			PlatformMatchID: rawMatch.MatchID,
		}

		if rawMatch.MatchedAt != nil {
			if matchedAt, err := parseExportTimestamp(*rawMatch.MatchedAt); err == nil {
				match.MatchedAt = &matchedAt
			}
		}

		for _, rawMessage := range rawMatch.Messages {
			sentAt, err := parseExportTimestamp(rawMessage.SentDate)
			if err != nil {
				continue
			}

			direction := DirectionSent
			if rawMessage.Direction == string(DirectionReceived) {
				direction = DirectionReceived
			}

			match.Messages = append(match.Messages, imports.CanonicalMessage{
				SentAt:    sentAt,
				Direction: direction,
				Type:      NormalizeMessageType(rawMessage.Type),
				Content:   rawMessage.Message,
			})
		}

		matches = append(matches, match)
	}

	return matches, dropped
}

// parseExportTimestamp accepts the timestamp formats seen across export
// versions.
func parseExportTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func stringOrDefault(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
