// Package schemas provides JSON Schema validation for imported and persisted
// CV documents.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cvschemas "github.com/jonathan/cv-studio/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	documentSchemaOnce sync.Once
	documentSchema     *gojsonschema.Schema
	documentSchemaErr  error
)

// cvDocumentSchema compiles the embedded CV document schema once.
func cvDocumentSchema() (*gojsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		raw, err := cvschemas.FS.ReadFile(cvschemas.CVDocument)
		if err != nil {
			documentSchemaErr = &SchemaLoadError{Path: cvschemas.CVDocument, Message: "embedded schema missing", Cause: err}
			return
		}
		documentSchema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			documentSchemaErr = &SchemaLoadError{Path: cvschemas.CVDocument, Message: "invalid schema", Cause: err}
		}
	})
	return documentSchema, documentSchemaErr
}

// ValidateDocument checks that data is a CV document: either the persisted
// envelope {"cv": ..., "templates": ...} or a bare CV object.
func ValidateDocument(data []byte) error {
	schema, err := cvDocumentSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: fmt.Sprintf("document is not valid JSON: %v", err)}}}
	}
	return resultError(result)
}

// ValidateDocumentFile reads a file and checks it with ValidateDocument.
func ValidateDocumentFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", absPath)
		}
		return fmt.Errorf("failed to read %s: %w", absPath, err)
	}
	return ValidateDocument(data)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return resultError(result)
}

func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
