package kernel

import "time"

// DomainEvent is raised by an aggregate when it changes and published after the
// surrounding transaction commits.
type DomainEvent interface {
	EventName() string
	AggregateID() UUID
	OccurredAt() time.Time
}

// EventRecorder collects events raised by an aggregate until they are drained.
// Aggregates embed it by value.
type EventRecorder struct {
	events []DomainEvent
}

func (r *EventRecorder) Record(e DomainEvent) {
	r.events = append(r.events, e)
}

// DomainEvents returns the pending events in the order they were raised.
func (r *EventRecorder) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *EventRecorder) ClearDomainEvents() {
	r.events = nil
}
