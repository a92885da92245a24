package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jonathan/cv-studio/internal/store"
	"github.com/jonathan/cv-studio/internal/types"
)

// LoadReport describes how the session state was restored.
type LoadReport struct {
	State store.State
	// FromStorage is false when defaults were used.
	FromStorage bool
	// Discarded is true when a corrupt value was removed from storage.
	Discarded bool
	// Repaired lists the fields that were replaced by an empty value.
	Repaired []string
}

// Encode serializes the state as the persistence envelope.
func Encode(state store.State) ([]byte, error) {
	st := state.Clone()
	st.CV.Normalize()
	return json.Marshal(st)
}

// Load restores the state stored under key. It never fails: a missing value
// yields the defaults, an unparsable value is removed and yields the
// defaults, and malformed fields are replaced by empty values.
func Load(ctx context.Context, storage Storage, key string, logger *slog.Logger) LoadReport {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := LoadReport{State: store.DefaultState()}

	data, err := storage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("failed to read saved state, using defaults", "component", "persist", "key", key, "error", err)
		}
		return defaults
	}

	report, ok := Decode(data)
	if !ok {
		logger.Warn("saved state is corrupt, discarding", "component", "persist", "key", key)
		if err := storage.Remove(ctx, key); err != nil {
			logger.Warn("failed to remove corrupt state", "component", "persist", "key", key, "error", err)
		}
		defaults.Discarded = true
		return defaults
	}
	if len(report.Repaired) > 0 {
		logger.Info("repaired saved state", "component", "persist", "key", key, "fields", report.Repaired)
	}
	return report
}

// Decode parses an envelope. The second result is false when data is not a
// JSON object. Fields of the cv object are decoded one by one so a malformed
// field never discards the others.
func Decode(data []byte) (LoadReport, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil || envelope == nil {
		return LoadReport{}, false
	}

	report := LoadReport{
		State:       store.State{Templates: decodeTemplates(envelope["templates"])},
		FromStorage: true,
	}

	var cvFields map[string]json.RawMessage
	if raw, ok := envelope["cv"]; !ok || json.Unmarshal(raw, &cvFields) != nil || cvFields == nil {
		report.State.CV = types.DefaultCVData()
		report.Repaired = append(report.Repaired, "cv")
		return report, true
	}

	cv := &report.State.CV
	if raw, ok := cvFields["personalInfo"]; ok && !isNull(raw) {
		var p types.PersonalInfo
		if json.Unmarshal(raw, &p) == nil {
			cv.PersonalInfo = &p
		} else {
			report.Repaired = append(report.Repaired, "personalInfo")
		}
	}

	repair := func(name string, ok bool) {
		if !ok {
			report.Repaired = append(report.Repaired, name)
		}
	}
	repair("experiences", decodeList(cvFields["experiences"], &cv.Experiences))
	repair("education", decodeList(cvFields["education"], &cv.Education))
	repair("projects", decodeList(cvFields["projects"], &cv.Projects))
	repair("skills", decodeList(cvFields["skills"], &cv.Skills))
	repair("skillCategories", decodeList(cvFields["skillCategories"], &cv.SkillCategories))
	repair("languages", decodeList(cvFields["languages"], &cv.Languages))
	repair("certifications", decodeList(cvFields["certifications"], &cv.Certifications))
	repair("interests", decodeList(cvFields["interests"], &cv.Interests))

	if pruned := types.PruneEmptyCategories(cv.SkillCategories); len(pruned) != len(cv.SkillCategories) {
		cv.SkillCategories = pruned
		report.Repaired = append(report.Repaired, "skillCategories")
	}

	cv.Normalize()
	return report, true
}

// decodeList decodes raw into dst when it is a JSON array. Missing and null
// fields are accepted as empty. It reports false when the field was present
// but unusable; dst is then left nil.
func decodeList[T any](raw json.RawMessage, dst *[]T) bool {
	if raw == nil || isNull(raw) {
		return true
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return false
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return false
	}
	*dst = out
	return true
}

func decodeTemplates(raw json.RawMessage) types.TemplateSettings {
	if raw == nil || isNull(raw) {
		return types.DefaultTemplateSettings()
	}
	var settings types.TemplateSettings
	if err := json.Unmarshal(raw, &settings); err != nil || settings.SelectedTemplate == "" {
		return types.DefaultTemplateSettings()
	}
	return settings
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
