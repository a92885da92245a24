// Package server provides the preview server and the HTTP API of the CV editor.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/validation"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnknownSlice indicates a path segment that names no part of the CV
type ErrUnknownSlice struct {
	Name string
}

func (e *ErrUnknownSlice) Error() string {
	return fmt.Sprintf("unknown cv section: %s", e.Name)
}

// ErrEntryNotFound indicates a list entry that does not exist
type ErrEntryNotFound struct {
	Slice string
	ID    string
}

func (e *ErrEntryNotFound) Error() string {
	return fmt.Sprintf("%s entry not found: %s", e.Slice, e.ID)
}

// ErrNotAList indicates an entry operation on a section that holds no entries
type ErrNotAList struct {
	Slice string
}

func (e *ErrNotAList) Error() string {
	return fmt.Sprintf("%s does not hold entries", e.Slice)
}

// errExportUnavailable is returned when the server runs without a browser.
var errExportUnavailable = errors.New("pdf export is not available")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		fieldErrs *validation.Errors
		badInput  *ErrValidation
		unknown   *ErrUnknownSlice
		notFound  *ErrEntryNotFound
		notList   *ErrNotAList
		exportErr *capture.ExportError
	)
	switch {
	case errors.As(err, &fieldErrs), errors.As(err, &badInput), errors.As(err, &notList):
		return http.StatusBadRequest
	case errors.As(err, &unknown), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, capture.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, errExportUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &exportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status and a JSON body. Field errors carry the
// rejected paths; export failures carry the message shown to the user.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	body := map[string]any{"error": err.Error()}

	var fieldErrs *validation.Errors
	var exportErr *capture.ExportError
	switch {
	case errors.As(err, &fieldErrs):
		body["error"] = "validation failed"
		body["fields"] = fieldErrs.Errors
	case errors.As(err, &exportErr):
		body["error"] = exportErr.UserMessage()
		body["stage"] = exportErr.Stage
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.jsonResponse(w, status, body)
}
