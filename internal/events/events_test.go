package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONRoundTrip(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	bus.Subscribe(EventBookingAccepted, func(event *Event) error {
		received = event
		return nil
	})

	payload := BookingEventPayload{
		BookingID: 17,
		StudentID: 3,
		TutorID:   1,
		StartTime: time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC),
		PriceEUR:  150,
		Status:    "accepted",
		ActorID:   1,
	}
	require.NoError(t, bus.PublishJSON(EventBookingAccepted, payload))

	require.NotNil(t, received)
	assert.Equal(t, EventBookingAccepted, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventSignupApproved, func(*Event) error { calls++; return nil })
	bus.Subscribe(EventSignupApproved, func(*Event) error { calls++; return errors.New("handler error is swallowed") })
	bus.Subscribe(EventSignupDenied, func(*Event) error { calls += 100; return nil })

	bus.Publish(&Event{Type: EventSignupApproved})

	assert.Equal(t, 2, calls)
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() {
		bus.Publish(&Event{Type: EventBookingDenied})
	})
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingRequested, BookingEventPayload{BookingID: 1}))
}

func TestPublishJSONUnmarshalablePayload(t *testing.T) {
	bus := NewEventBus()
	assert.Error(t, bus.PublishJSON(EventBookingRequested, func() {}))
}
