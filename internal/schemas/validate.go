// Package schemas validates resume documents against the canonical
// JSON Schema. The schema is embedded so validation needs no files on
// disk at runtime.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchema string

var (
	compiledResume     *gojsonschema.Schema
	compileResumeOnce  sync.Once
	compileResumeError error
)

// ValidationError carries every field-level failure from one document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation failure at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("resume validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateResume validates a document (any JSON-marshalable value)
// against the resume schema. Returns nil when valid, a
// *ValidationError with field paths otherwise.
func ValidateResume(document any) error {
	schema, err := resumeSchemaCompiled()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(encoded))
	if err != nil {
		return fmt.Errorf("failed to validate document: %w", err)
	}
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

func resumeSchemaCompiled() (*gojsonschema.Schema, error) {
	compileResumeOnce.Do(func() {
		compiledResume, compileResumeError = gojsonschema.NewSchema(
			gojsonschema.NewStringLoader(resumeSchema))
		if compileResumeError != nil {
			compileResumeError = fmt.Errorf("failed to compile resume schema: %w", compileResumeError)
		}
	})
	return compiledResume, compileResumeError
}
