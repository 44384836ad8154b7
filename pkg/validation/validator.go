package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Locations reported with a field failure
const (
	LocationBody   = "body"
	LocationParams = "params"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// genericMessages maps validation tags to message templates.
// Templates take the field name and, where present, the tag parameter.
var genericMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"url":      "%s must be a valid URL",
	"min":      "%s must be at least %s characters",
	"max":      "%s must be at most %s characters",
	"maxbytes": "%s must be at most %s bytes",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"datetime": "%s must match the format %s",
	"username": "%s must contain only letters, numbers and underscores",
	"password": "%s must contain at least one lowercase letter, one uppercase letter, and one number",
}

// FieldError describes a single failed rule
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

// Errors is a list of field failures
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator validates structs and renders failures with registered messages
type Validator struct {
	validate *validator.Validate

	mu       sync.RWMutex
	messages map[string]string
}

// New creates a validator with the custom username, password and maxbytes tags registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	// maxbytes bounds the encoded length; max counts runes
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})

	return &Validator{
		validate: v,
		messages: make(map[string]string),
	}
}

// RegisterMessages adds "field.tag" message overrides
func (v *Validator) RegisterMessages(messages map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for k, msg := range messages {
		v.messages[k] = msg
	}
}

// Struct validates s and returns Errors when any rule fails
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validation could not run: %w", err)
	}

	out := make(Errors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, FieldError{
			Field:    fe.Field(),
			Message:  v.message(fe),
			Location: LocationBody,
		})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	v.mu.RLock()
	msg, ok := v.messages[fe.Field()+"."+fe.Tag()]
	v.mu.RUnlock()
	if ok {
		return msg
	}

	if tmpl, ok := genericMessages[fe.Tag()]; ok {
		if strings.Count(tmpl, "%s") == 2 {
			return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
		}
		return fmt.Sprintf(tmpl, fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// IsStrongPassword reports whether s has an ASCII lowercase letter, uppercase letter and digit
func IsStrongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// ParamError builds a single failure for a path parameter
func ParamError(field, message string) Errors {
	return Errors{{Field: field, Message: message, Location: LocationParams}}
}
