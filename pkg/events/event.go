package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract for anything published on the escalation bus.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// EscalationEvent is emitted when a route needs a human: flagged content,
// pending order verification, or an unresolved customer-service issue.
type EscalationEvent struct {
	ID         string
	Route      string
	SessionID  string
	Query      string
	Reason     string
	OccurredAt time.Time
}

func NewEscalation(route, sessionID, query, reason string) EscalationEvent {
	return EscalationEvent{
		ID:         uuid.NewString(),
		Route:      route,
		SessionID:  sessionID,
		Query:      query,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
}

func (e EscalationEvent) EventType() string { return "escalation" }

func (e EscalationEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":         e.ID,
		"route":      e.Route,
		"session_id": e.SessionID,
		"query":      e.Query,
		"reason":     e.Reason,
		"occurred":   e.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func (e EscalationEvent) Timestamp() time.Time { return e.OccurredAt }
