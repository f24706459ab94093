package services

import (
	"encoding/json"
	"testing"

	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validExportJSON(t *testing.T, mutate func(doc map[string]any)) []byte {
	t.Helper()

	doc := map[string]any{
		"user": map[string]any{
			"birth_date":     "1992-04-15",
			"gender":         "M",
			"gender_filter":  "F",
			"interested_in":  "F",
			"age_filter_min": 21,
			"age_filter_max": 35,
		},
		"usage": map[string]any{
			"app_opens":    map[string]int{"2024-01-01": 5},
			"swipes_likes": map[string]int{"2024-01-01": 10},
		},
		"messages": []map[string]any{},
	}
	if mutate != nil {
		mutate(doc)
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestExportNormalizerService_RequiredFields(t *testing.T) {
	normalizer := &ExportNormalizerService{log: logger.New("test")}

	t.Run("Valid export normalizes", func(t *testing.T) {
		export, err := normalizer.Normalize(PlatformTinder, validExportJSON(t, nil))
		require.NoError(t, err)
		assert.Equal(t, PlatformTinder, export.Platform)
		assert.Equal(t, "M", export.Demographics.Gender)
		assert.Equal(t, 21, export.Demographics.AgeFilterMin)
		assert.Equal(t, 1992, export.Demographics.BirthDate.Year())
	})

	t.Run("Missing user section fails with path", func(t *testing.T) {
		_, err := normalizer.Normalize(PlatformTinder, []byte(`{"usage":{}}`))
		var validationErr *types.SchemaValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "user", validationErr.Path)
	})

	t.Run("Missing birth date fails with path", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			delete(doc["user"].(map[string]any), "birth_date")
		})
		_, err := normalizer.Normalize(PlatformTinder, raw)
		var validationErr *types.SchemaValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "user.birth_date", validationErr.Path)
	})

	t.Run("Missing age filter bounds fail with path", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			delete(doc["user"].(map[string]any), "age_filter_max")
		})
		_, err := normalizer.Normalize(PlatformTinder, raw)
		var validationErr *types.SchemaValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "user.age_filter_max", validationErr.Path)
	})

	t.Run("Malformed birth date is not silently coerced", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["user"].(map[string]any)["birth_date"] = "not-a-date"
		})
		_, err := normalizer.Normalize(PlatformTinder, raw)
		var validationErr *types.SchemaValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "user.birth_date", validationErr.Path)
	})
}

func TestExportNormalizerService_OptionalDefaults(t *testing.T) {
	normalizer := &ExportNormalizerService{log: logger.New("test")}

	export, err := normalizer.Normalize(PlatformTinder, validExportJSON(t, nil))
	require.NoError(t, err)

	assert.Equal(t, "", export.Demographics.Education)
	assert.Equal(t, "", export.Demographics.Bio)
	assert.Equal(t, float64(0), export.Demographics.PositionLat)
	assert.Equal(t, float64(0), export.Demographics.PositionLon)
}

func TestExportNormalizerService_ForwardSchemaTolerance(t *testing.T) {
	normalizer := &ExportNormalizerService{log: logger.New("test")}

	t.Run("Unknown top-level section is preserved opaquely", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["spotify_anthems"] = map[string]any{"track": "xyz"}
		})
		export, err := normalizer.Normalize(PlatformTinder, raw)
		require.NoError(t, err)
		require.Contains(t, export.Extras, "spotify_anthems")
		assert.JSONEq(t, `{"track":"xyz"}`, string(export.Extras["spotify_anthems"]))
	})

	t.Run("Unknown user field is preserved opaquely", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["user"].(map[string]any)["zodiac_sign"] = "aries"
		})
		export, err := normalizer.Normalize(PlatformTinder, raw)
		require.NoError(t, err)
		require.Contains(t, export.Extras, "user.zodiac_sign")
		assert.JSONEq(t, `"aries"`, string(export.Extras["user.zodiac_sign"]))
	})
}

func TestExportNormalizerService_InterestShapes(t *testing.T) {
	normalizer := &ExportNormalizerService{log: logger.New("test")}

	t.Run("Bare string list", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["user"].(map[string]any)["interests"] = []string{"hiking", "coffee"}
		})
		export, err := normalizer.Normalize(PlatformTinder, raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"hiking", "coffee"}, export.Demographics.Interests)
	})

	t.Run("Rich object list decodes to the same shape", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["user"].(map[string]any)["interests"] = []map[string]any{
				{"id": "i1", "name": "hiking"},
				{"id": "i2", "name": "coffee"},
			}
		})
		export, err := normalizer.Normalize(PlatformTinder, raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"hiking", "coffee"}, export.Demographics.Interests)
	})

	t.Run("Unrecognized shape degrades to opaque extras", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["user"].(map[string]any)["interests"] = map[string]any{"weird": true}
		})
		export, err := normalizer.Normalize(PlatformTinder, raw)
		require.NoError(t, err)
		assert.Empty(t, export.Demographics.Interests)
		assert.Contains(t, export.Extras, "user.interests")
	})
}

func TestExportNormalizerService_Matches(t *testing.T) {
	normalizer := &ExportNormalizerService{log: logger.New("test")}

	t.Run("Messages decode with direction and type", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["messages"] = []map[string]any{
				{
					"match_id": "m1",
					"messages": []map[string]any{
						{"sent_date": "2024-01-02T10:00:00Z", "direction": "sent", "type": "text", "message": "hey"},
						{"sent_date": "2024-01-02T10:05:00Z", "direction": "received", "type": "weird_new_type", "message": "hi"},
					},
				},
			}
		})
		export, err := normalizer.Normalize(PlatformTinder, raw)
		require.NoError(t, err)
		require.Len(t, export.Matches, 1)
		require.Len(t, export.Matches[0].Messages, 2)
		assert.Equal(t, DirectionSent, export.Matches[0].Messages[0].Direction)
		assert.Equal(t, MessageTypeText, export.Matches[0].Messages[0].Type)
		assert.Equal(t, DirectionReceived, export.Matches[0].Messages[1].Direction)
		assert.Equal(t, MessageTypeOther, export.Matches[0].Messages[1].Type)
	})

	t.Run("Match without platform id is dropped, not fatal", func(t *testing.T) {
		raw := validExportJSON(t, func(doc map[string]any) {
			doc["messages"] = []map[string]any{
				{"match_id": "", "messages": []map[string]any{}},
				{"match_id": "m2", "messages": []map[string]any{}},
			}
		})
		export, err := normalizer.Normalize(PlatformTinder, raw)
		require.NoError(t, err)
		require.Len(t, export.Matches, 1)
		assert.Equal(t, "m2", export.Matches[0].PlatformMatchID)
	})
}
