package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestPublishDispatchesInSubscriptionOrder(t *testing.T) {
	bus := New(slog.Default())

	var order []int
	bus.Subscribe("thing.happened", func(_ context.Context, _ Event) error {
		order = append(order, 1)
		return nil
	})
	bus.Subscribe("thing.happened", func(_ context.Context, _ Event) error {
		order = append(order, 2)
		return nil
	})

	err := bus.Publish(context.Background(), testEvent{name: "thing.happened"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
}

func TestPublishWithoutSubscribersIsANoOp(t *testing.T) {
	bus := New(slog.Default())
	err := bus.Publish(context.Background(), testEvent{name: "nobody.cares"})
	require.NoError(t, err)
}

func TestHandlerFailurePropagatesAndAbortsDispatch(t *testing.T) {
	bus := New(slog.Default())
	boom := errors.New("boom")

	var secondRan bool
	bus.Subscribe("thing.happened", func(_ context.Context, _ Event) error { return boom })
	bus.Subscribe("thing.happened", func(_ context.Context, _ Event) error {
		secondRan = true
		return nil
	})

	err := bus.Publish(context.Background(), testEvent{name: "thing.happened"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, secondRan)
}

func TestPublishStopsAtFirstFailingEvent(t *testing.T) {
	bus := New(slog.Default())

	var seen []string
	bus.Subscribe("first", func(_ context.Context, e Event) error {
		seen = append(seen, e.EventName())
		return errors.New("nope")
	})
	bus.Subscribe("second", func(_ context.Context, e Event) error {
		seen = append(seen, e.EventName())
		return nil
	})

	err := bus.Publish(context.Background(), testEvent{name: "first"}, testEvent{name: "second"})
	require.Error(t, err)
	assert.Equal(t, []string{"first"}, seen)
}
