// Package eventbus provides the in-process publish/subscribe facility used to
// run cross-aggregate cascades (overdue loan -> fine, received order -> new
// copies). Events are collected by domain operations and published by the
// application services only after the triggering state change has been saved.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Event is an immutable record of a state change.
type Event interface {
	EventName() string
}

// Handler reacts to a dispatched event. Handlers run synchronously and
// in-process; a handler failure propagates to the publisher.
type Handler func(ctx context.Context, event Event) error

// Bus dispatches events to subscribed handlers in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
		tracer:   otel.Tracer("openlms/eventbus"),
	}
}

// Subscribe registers a handler for the named event type.
func (b *Bus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the events in order. The first handler error aborts
// dispatch and is returned to the caller.
func (b *Bus) Publish(ctx context.Context, events ...Event) error {
	for _, event := range events {
		if err := b.publishOne(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) publishOne(ctx context.Context, event Event) error {
	name := event.EventName()

	b.mu.RLock()
	handlers := b.handlers[name]
	b.mu.RUnlock()

	ctx, span := b.tracer.Start(ctx, "eventbus.publish",
		trace.WithAttributes(
			attribute.String("event.name", name),
			attribute.Int("handler.count", len(handlers)),
		),
	)
	defer span.End()

	b.logger.Debug("publishing event", "event", name, "handlers", len(handlers))

	for i, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			span.SetAttributes(attribute.Int("handler.failed_index", i))
			b.logger.Error("event handler failed", "event", name, "error", err)
			return fmt.Errorf("handle %s: %w", name, err)
		}
		span.AddEvent("event.handled", trace.WithAttributes(attribute.Int("handler.index", i)))
	}

	return nil
}
