package log

import "time"

// Logger receives protocol capture events. Implementations must be safe for
// concurrent use and should not block.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards all events. Usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}

// OrNoop returns l, or NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

// StateChange logs a state transition for entity.
func StateChange(l Logger, session, source string, entity StateEntity, oldState, newState, reason string) {
	if l == nil {
		return
	}
	l.Log(Event{
		Timestamp: time.Now(),
		SessionID: session,
		Layer:     LayerResponder,
		Category:  CategoryState,
		Source:    source,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// Error logs an error captured at layer.
func Error(l Logger, session string, layer Layer, err error, context string) {
	if l == nil || err == nil {
		return
	}
	l.Log(Event{
		Timestamp: time.Now(),
		SessionID: session,
		Layer:     layer,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: context,
		},
	})
}
