package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-review/internal/events"
)

// RecordingEmitter implements events.EventEmitter by keeping every emitted
// event. It never dispatches to handlers.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (r *RecordingEmitter) EmitEvent(_ context.Context, event *events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns the recorded events in emission order.
func (r *RecordingEmitter) Events() []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.Event(nil), r.events...)
}

// OfType returns the recorded events with the given type.
func (r *RecordingEmitter) OfType(eventType string) []*events.Event {
	var out []*events.Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
