// Package validation checks decoded request bodies against struct tags and
// reports field-level failures with client-facing messages.
//
// # Overview
//
// Request types declare their rules with go-playground/validator tags. Field
// names in failures use the json tag of the field, so they match what the
// client sent:
//
//	type LoginRequest struct {
//		Email    string `json:"email" validate:"required,email"`
//		Password string `json:"password" validate:"required"`
//	}
//
// Messages are resolved in order: an exact "field.tag" override registered
// with RegisterMessages, then a generic per-tag message, then a fallback.
//
//	v := validation.New()
//	v.RegisterMessages(map[string]string{
//		"email.required": "Email is required",
//		"email.email":    "Must be a valid email address",
//	})
//	if err := v.Struct(&req); err != nil {
//		var verrs validation.Errors
//		errors.As(err, &verrs) // field-level failures
//	}
//
// # Custom Tags
//
//	username - letters, digits and underscores only
//	password - at least one lowercase letter, one uppercase letter and one digit
//	maxbytes - at most N bytes of UTF-8, e.g. maxbytes=72
package validation
