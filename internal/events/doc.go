// Package events provides the in-process event channel of the review engine.
//
// Services publish domain events (card.reviewed, card.created) through an
// EventEmitter without knowing which handlers consume them. Handlers are
// supplied when the emitter is constructed, run asynchronously, and cannot
// affect the publisher: their errors and panics are logged and dropped.
//
// The primary components are:
// - Event: a typed envelope with a JSON payload
// - EventHandler: interface for components that can handle events
// - InMemoryEventEmitter: dispatches events on background goroutines
package events
