package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewEventBus()

	var first, second []Event
	bus.Subscribe("test.topic", func(e Event) error {
		first = append(first, e)
		return nil
	})
	bus.Subscribe("test.topic", func(e Event) error {
		second = append(second, e)
		return nil
	})
	bus.Subscribe("other.topic", func(e Event) error {
		t.Fatal("should not receive events from other topics")
		return nil
	})

	bus.Publish(Event{Topic: "test.topic", EntityID: "e1"})

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.False(t, first[0].OccurredAt.IsZero())
}

func TestEventBusSwallowsHandlerFailures(t *testing.T) {
	bus := NewEventBus()

	var delivered int
	bus.Subscribe("test.topic", func(e Event) error {
		panic("handler exploded")
	})
	bus.Subscribe("test.topic", func(e Event) error {
		return errors.New("handler failed")
	})
	bus.Subscribe("test.topic", func(e Event) error {
		delivered++
		return nil
	})

	// 前面的订阅者失败不影响后面的，也不影响调用方
	assert.NotPanics(t, func() {
		bus.Publish(Event{Topic: "test.topic", EntityID: "e1"})
	})
	assert.Equal(t, 1, delivered)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() {
		bus.Publish(Event{Topic: "nobody.listens"})
	})
}
