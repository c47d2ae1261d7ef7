package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks an identifier absent from the source files or a lookup
	// that returned no match. Callers treat it as an empty result.
	ErrNotFound = errors.New("not found")

	// ErrNoData is returned when a document contains zero record elements.
	ErrNoData = errors.New("no data")
)

// ParseError reports a malformed source document. Fatal for that file only.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports bad input for a single instrument: an invalid CFI
// code or a missing identifier. Field names the specific violation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError carries the identifier that could not be resolved.
type NotFoundError struct {
	Kind string // "isin", "lei", "figi"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ExternalServiceError is a network, timeout or rate-limit failure from an
// enrichment service that persisted after bounded retries.
type ExternalServiceError struct {
	Service  string
	Status   int // 0 when no HTTP response was received
	Attempts int
	Err      error
}

func (e *ExternalServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s request failed after %d attempts (status %d): %v", e.Service, e.Attempts, e.Status, e.Err)
	}
	return fmt.Sprintf("%s request failed after %d attempts: %v", e.Service, e.Attempts, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Kind names the taxonomy bucket of err, used for reporting and metrics labels.
func Kind(err error) string {
	var (
		pe *ParseError
		ve *ValidationError
		se *ExternalServiceError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoData):
		return "not_found"
	case errors.As(err, &se):
		return "external_service"
	default:
		return "internal"
	}
}

// HTTPStatus maps err onto the status an outer API layer should return.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case "ok":
		return http.StatusOK
	case "parse", "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "external_service":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
