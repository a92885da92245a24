package schemas

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument_BareCV(t *testing.T) {
	data, err := json.Marshal(types.DefaultCVData())
	require.NoError(t, err)

	assert.NoError(t, ValidateDocument(data))
}

func TestValidateDocument_Envelope(t *testing.T) {
	doc := map[string]any{
		"cv":        types.EmptyCVData(),
		"templates": map[string]any{"selectedTemplate": "model6"},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.NoError(t, ValidateDocument(data))
}

func TestValidateDocument_EmptyObject(t *testing.T) {
	assert.NoError(t, ValidateDocument([]byte(`{}`)))
}

func TestValidateDocument_WrongTypes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"array root", `[]`},
		{"education not array", `{"education": "none"}`},
		{"skill level not integer", `{"skillCategories": [{"category": "Techniques", "skills": [{"name": "Go", "level": "high"}]}]}`},
		{"envelope cv not object", `{"cv": 5}`},
		{"selected template not string", `{"cv": {}, "templates": {"selectedTemplate": 3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument([]byte(tt.doc))
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
			assert.Greater(t, len(validationErr.Errors), 0)
		})
	}
}

func TestValidateDocument_NotJSON(t *testing.T) {
	err := ValidateDocument([]byte(`{not json`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidateDocumentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"skills": ["Go"]}`), 0644))

	assert.NoError(t, ValidateDocumentFile(path))

	err := ValidateDocumentFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{}`)
	require.Error(t, err)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Error(), "name")
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}
