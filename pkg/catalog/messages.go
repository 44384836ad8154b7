package catalog

import "github.com/platinummonkey/poolguide/pkg/validation"

// Client-facing messages
const (
	MsgPoolNotFound   = "Pool not found"
	MsgReviewNotFound = "Review not found"
	MsgPoolDeleted    = "Pool deleted successfully"
	MsgReviewDeleted  = "Review deleted successfully"
)

var validationMessages = map[string]string{
	"name.required":       "Pool name is required",
	"name.min":            "Name must be between 2-100 characters",
	"name.max":            "Name must be between 2-100 characters",
	"latitude.gte":        "Latitude must be a valid coordinate in Iceland (63-67)",
	"latitude.lte":        "Latitude must be a valid coordinate in Iceland (63-67)",
	"longitude.gte":       "Longitude must be a valid coordinate in Iceland (-24 to -13)",
	"longitude.lte":       "Longitude must be a valid coordinate in Iceland (-24 to -13)",
	"entry_fee.gte":       "Entry fee must be a positive number",
	"website.url":         "Website must be a valid URL",
	"rating.required":     "Rating is required",
	"rating.gte":          "Rating must be between 1-5",
	"rating.lte":          "Rating must be between 1-5",
	"comment.max":         "Comment must be less than 500 characters",
	"pool_id.required":    "Pool ID is required",
	"visit_date.datetime": "Visit date must be a date in YYYY-MM-DD format",
}

// RegisterMessages installs the catalog validation messages on v
func RegisterMessages(v *validation.Validator) {
	v.RegisterMessages(validationMessages)
}
