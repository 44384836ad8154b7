package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username string  `json:"username" validate:"required,min=3,max=30,username"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,maxbytes=72,password"`
	Website  *string `json:"website,omitempty" validate:"omitempty,url"`
	Rating   *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func validForm() signupForm {
	return signupForm{Username: "pool_fan", Email: "fan@example.com", Password: "Swim1234"}
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	form := validForm()
	assert.NoError(t, v.Struct(&form))

	form.Password = "Aa1" + strings.Repeat("x", 69)
	assert.NoError(t, v.Struct(&form), "72 bytes is the bcrypt limit")
}

func TestValidator_FieldErrors(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(f *signupForm)
		field   string
		message string
	}{
		{"missing username", func(f *signupForm) { f.Username = "" }, "username", "username is required"},
		{"short username", func(f *signupForm) { f.Username = "ab" }, "username", "username must be at least 3 characters"},
		{"bad chars", func(f *signupForm) { f.Username = "pool-fan" }, "username", "username must contain only letters, numbers and underscores"},
		{"bad email", func(f *signupForm) { f.Email = "nope" }, "email", "email must be a valid email address"},
		{"weak password", func(f *signupForm) { f.Password = "alllowercase1" }, "password", "password must contain at least one lowercase letter, one uppercase letter, and one number"},
		{"password too long", func(f *signupForm) { f.Password = "Aa1" + strings.Repeat("x", 70) }, "password", "password must be at most 72 bytes"},
		{"multibyte password too long", func(f *signupForm) { f.Password = "Aa1" + strings.Repeat("é", 35) }, "password", "password must be at most 72 bytes"},
		{"bad url", func(f *signupForm) { f.Website = strPtr("not a url") }, "website", "website must be a valid URL"},
		{"rating too high", func(f *signupForm) { f.Rating = intPtr(6) }, "rating", "rating must be less than or equal to 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := v.Struct(&form)
			require.Error(t, err)

			var verrs Errors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.Equal(t, tt.message, verrs[0].Message)
			assert.Equal(t, LocationBody, verrs[0].Location)
		})
	}
}

func TestValidator_RegisteredMessagesOverride(t *testing.T) {
	v := New()
	v.RegisterMessages(map[string]string{
		"username.required": "Username is required",
		"email.email":       "Must be a valid email address",
	})

	form := validForm()
	form.Username = ""
	form.Email = "nope"

	err := v.Struct(&form)
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, "Username is required", verrs[0].Message)
	assert.Equal(t, "Must be a valid email address", verrs[1].Message)
	assert.Contains(t, err.Error(), "Username is required")
}

func TestValidator_OptionalPointersSkipped(t *testing.T) {
	v := New()
	form := validForm()
	form.Website = nil
	form.Rating = nil
	assert.NoError(t, v.Struct(&form))
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Swim1234", true},
		{"swim1234", false},
		{"SWIM1234", false},
		{"SwimSwim", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStrongPassword(tt.password))
		})
	}
}

func TestParamError(t *testing.T) {
	errs := ParamError("id", "ID must be an integer")
	require.Len(t, errs, 1)
	assert.Equal(t, LocationParams, errs[0].Location)
	assert.Equal(t, "validation failed: ID must be an integer", errs.Error())
}
