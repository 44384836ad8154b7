package accounts

import "github.com/platinummonkey/poolguide/pkg/validation"

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72,password"`
}

// Client-facing messages
const (
	MsgLoginSuccessful  = "Login successful"
	MsgRegistered       = "User registered successfully"
	MsgInvalidCreds     = "Invalid credentials"
	MsgUserExists       = "User already exists with this username or email"
	MsgServerError      = "Server error"
	MsgPasswordRequired = "Password is required"
)

var validationMessages = map[string]string{
	"email.required":    "Email is required",
	"email.email":       "Must be a valid email address",
	"password.required": MsgPasswordRequired,
	"password.min":      "Password must be at least 8 characters",
	"password.maxbytes": "Password must be at most 72 bytes",
	"password.password": "Password must contain at least one lowercase letter, one uppercase letter, and one number",
	"username.required": "Username is required",
	"username.min":      "Username must be between 3-30 characters",
	"username.max":      "Username must be between 3-30 characters",
	"username.username": "Username must contain only letters, numbers and underscores",
}

// RegisterMessages installs the account validation messages on v
func RegisterMessages(v *validation.Validator) {
	v.RegisterMessages(validationMessages)
}
