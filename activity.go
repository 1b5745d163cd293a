package yetichat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess     ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure     ActivityEventType = "auth.login.failure"
	ActivityEventRegisterSuccess  ActivityEventType = "auth.register.success"
	ActivityEventRegisterFailure  ActivityEventType = "auth.register.failure"
	ActivityEventLogout           ActivityEventType = "auth.logout"
	ActivityEventProvisionCreated ActivityEventType = "auth.provision.created"
	ActivityEventProvisionExists  ActivityEventType = "auth.provision.exists"
	ActivityEventProvisionFailure ActivityEventType = "auth.provision.failure"
)

// ActorRef identifies who triggered an event.
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	ID         string
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func emitActivity(ctx context.Context, sink ActivitySink, logger Logger, eventType ActivityEventType, uid string, metadata map[string]any) {
	event := ActivityEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		Actor:      ActorRef{ID: uid, Type: "user"},
		UserID:     uid,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}
	if uid == "" {
		event.Actor = ActorRef{Type: "unknown"}
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		normalizeLogger(logger).Warn("activity sink record error: %v", err)
	}
}
