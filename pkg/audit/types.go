package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the category of audit event
type EventType string

const (
	// Authentication events
	EventTypeLogin          EventType = "auth.login"
	EventTypeLoginFailed    EventType = "auth.login_failed"
	EventTypeRegister       EventType = "auth.register"
	EventTypeRegisterFailed EventType = "auth.register_failed"

	// Authorization events
	EventTypeAccessDenied EventType = "authz.access_denied"
	EventTypeAdminGrant   EventType = "authz.admin_grant"
	EventTypeAdminRevoke  EventType = "authz.admin_revoke"

	// Catalog mutations
	EventTypePoolCreate   EventType = "catalog.pool_create"
	EventTypePoolUpdate   EventType = "catalog.pool_update"
	EventTypePoolDelete   EventType = "catalog.pool_delete"
	EventTypeReviewCreate EventType = "catalog.review_create"
	EventTypeReviewDelete EventType = "catalog.review_delete"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceTypeUser   ResourceType = "user"
	ResourceTypePool   ResourceType = "pool"
	ResourceTypeReview ResourceType = "review"
)

// Event is a single audit log entry
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor
	UserID   *int64 `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`

	// Resource
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`

	// Request context
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`

	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent stamps a fresh event with an ID and the current UTC time
func NewEvent(eventType EventType, status EventStatus) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Status:    status,
	}
}

// WithResource sets the resource the event refers to
func (e *Event) WithResource(t ResourceType, id string) *Event {
	e.ResourceType = t
	e.ResourceID = id
	return e
}

// WithActor sets the user responsible for the event
func (e *Event) WithActor(id int64, username string) *Event {
	e.UserID = &id
	e.Username = username
	return e
}

// Filter selects events when reading a log back
type Filter struct {
	Types  []EventType
	UserID *int64
	Since  time.Time
	Limit  int
}

// Matches reports whether e passes every set criterion
func (f Filter) Matches(e *Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
