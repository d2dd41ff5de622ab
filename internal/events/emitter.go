package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/scry-review/internal/platform/logger"
)

// DefaultHandlerTimeout bounds a single handler invocation when the
// configured timeout is zero.
const DefaultHandlerTimeout = 10 * time.Second

// EmitterConfig holds configuration for InMemoryEventEmitter.
type EmitterConfig struct {
	HandlerTimeout time.Duration
}

// InMemoryEventEmitter dispatches events to a fixed list of handlers on a
// background goroutine per event.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	timeout  time.Duration
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
// Handlers are invoked in the order given.
func NewInMemoryEventEmitter(
	log *slog.Logger,
	config EmitterConfig,
	handlers ...EventHandler,
) *InMemoryEventEmitter {
	if log == nil {
		log = slog.Default()
	}

	timeout := config.HandlerTimeout
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}

	for i, h := range handlers {
		if h == nil {
			panic(fmt.Sprintf("event handler %d cannot be nil", i))
		}
	}

	return &InMemoryEventEmitter{
		handlers: append([]EventHandler(nil), handlers...),
		timeout:  timeout,
		logger:   log.With(slog.String("component", "in_memory_event_emitter")),
	}
}

// EmitEvent publishes the given event to all registered handlers.
//
// Dispatch happens on a new goroutine with a context that keeps ctx's values
// but not its cancellation, so handlers still run after the request that
// produced the event has finished.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if event == nil {
		log.Warn("ignoring nil event")
		return
	}

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		log.Warn("emitter closed, dropping event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type))
		return
	}
	e.wg.Add(1)
	e.mu.RUnlock()

	if len(e.handlers) == 0 {
		log.Warn("no handlers registered for event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type))
	}

	go func() {
		defer e.wg.Done()
		e.dispatch(context.WithoutCancel(ctx), event, log)
	}()
}

func (e *InMemoryEventEmitter) dispatch(ctx context.Context, event *Event, log *slog.Logger) {
	log.Debug("dispatching event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int("handler_count", len(e.handlers)))

	for i, handler := range e.handlers {
		if err := e.invoke(ctx, handler, event); err != nil {
			log.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type))
		}
	}
}

// invoke runs one handler under the handler timeout and converts a panic
// into an error.
func (e *InMemoryEventEmitter) invoke(ctx context.Context, handler EventHandler, event *Event) (err error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.HandleEvent(ctx, event)
}

// Close stops accepting new events and waits for in-flight dispatches to
// finish or for ctx to be done, whichever comes first.
func (e *InMemoryEventEmitter) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("event emitter closed")
		return nil
	case <-ctx.Done():
		e.logger.Warn("event emitter close timed out with dispatches in flight")
		return ctx.Err()
	}
}
