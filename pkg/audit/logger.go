package audit

import (
	"context"
	"errors"

	"github.com/platinummonkey/poolguide/pkg/observability"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log records an audit event
	Log(ctx context.Context, event *Event) error

	// Close flushes and releases the sink
	Close() error
}

// NopLogger discards every event
type NopLogger struct{}

func (NopLogger) Log(context.Context, *Event) error { return nil }
func (NopLogger) Close() error                      { return nil }

// LogLogger writes events through the structured application logger
type LogLogger struct {
	logger *observability.Logger
}

// NewLogLogger creates a sink that emits each event as an info entry
func NewLogLogger(logger *observability.Logger) *LogLogger {
	return &LogLogger{logger: logger.WithField("audit", true)}
}

func (l *LogLogger) Log(_ context.Context, e *Event) error {
	fields := map[string]interface{}{
		"event_id":   e.ID,
		"event_type": string(e.Type),
		"status":     string(e.Status),
	}
	if e.UserID != nil {
		fields["user_id"] = *e.UserID
	}
	if e.Username != "" {
		fields["username"] = e.Username
	}
	if e.ResourceType != "" {
		fields["resource_type"] = string(e.ResourceType)
		fields["resource_id"] = e.ResourceID
	}
	if e.IPAddress != "" {
		fields["ip"] = e.IPAddress
	}
	if e.RequestID != "" {
		fields["request_id"] = e.RequestID
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}

	msg := e.Message
	if msg == "" {
		msg = string(e.Type)
	}
	l.logger.WithFields(fields).Info(msg)
	return nil
}

func (l *LogLogger) Close() error { return nil }

// MultiLogger fans events out to several sinks in order
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a logger that writes to every given sink
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log writes to all sinks even when some fail and joins their errors
func (m *MultiLogger) Log(ctx context.Context, event *Event) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Log(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiLogger) Close() error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
