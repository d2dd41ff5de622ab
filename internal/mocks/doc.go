// Package mocks provides hand-written fakes of the store, embedder, event
// emitter and JWT interfaces shared by tests across packages. Each fake
// takes an optional function field per method; when it is nil the fake
// falls back to its default fields.
package mocks
