// Package audit records security-relevant events: logins, registrations,
// admin grants, catalog mutations and denied requests.
//
// Events go to one or more sinks. FileLogger appends JSON lines to
// audit.log and rotates by size. LogLogger emits each event through the
// structured application logger with an "audit" field. MultiLogger fans
// out to several sinks.
//
// Usage:
//
//	sink, err := audit.NewFileLogger(audit.FileLoggerConfig{BasePath: "/var/log/poolguide"})
//	if err != nil {
//		return err
//	}
//	defer sink.Close()
//
//	event := audit.NewEvent(audit.EventTypePoolDelete, audit.EventStatusSuccess).
//		WithActor(admin.ID, admin.Username).
//		WithResource(audit.ResourceTypePool, "12")
//	_ = sink.Log(ctx, event)
//
// Audit failures never fail the request that caused them; callers log
// the error and carry on.
package audit
