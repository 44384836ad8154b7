package httputil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/validation"
)

// Kind classifies an application error and selects its HTTP status
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindConflict
	KindNotFound
	KindRateLimited
)

// Status returns the HTTP status code for the kind
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	return [...]string{"internal", "validation", "authentication", "authorization", "conflict", "not_found", "rate_limited"}[k]
}

// Error is an error that carries its client-facing classification
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies cause under kind with a client-facing message
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ValidationFailed converts field failures into a validation error
func ValidationFailed(errs validation.Errors) *Error {
	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldError{Field: fe.Field, Message: fe.Message, Location: fe.Location})
	}
	msg := "Validation failed"
	if len(fields) == 1 {
		msg = fields[0].Message
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// WriteAppError writes err using the error envelope.
// Unclassified errors are internal and surface their raw message.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			appErr = ValidationFailed(verrs)
		} else {
			appErr = Wrap(KindInternal, err.Error(), err)
		}
	}

	status := appErr.Kind.Status()
	if status >= http.StatusInternalServerError {
		observability.FromContext(r.Context()).
			WithError(err).
			WithField("path", r.URL.Path).
			Error("Request failed")
	}

	WriteJSON(w, status, ErrorResponse{Error: appErr.Message, Errors: appErr.Fields})
}
