package infrastructure

import (
	"context"
	"errors"
	"testing"

	"sidebet/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestNATSTransactionalPublisher_FlushPublishesPending(t *testing.T) {
	mockPublisher := &MockEventPublisher{
		PublishedEvents: make([]events.Event, 0),
	}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher).(*NATSTransactionalPublisher)

	created := events.WagerCreatedEvent{
		WagerID:   123,
		CreatorID: "user-100",
		Stake:     10_000,
		Odds:      150,
		Selection: "home team wins",
	}
	matched := events.WagerMatchedEvent{
		WagerID:    123,
		CreatorID:  "user-100",
		OpponentID: "user-200",
		Stake:      10_000,
	}

	require.NoError(t, transPublisher.Publish(created))
	require.NoError(t, transPublisher.Publish(matched))

	// Nothing reaches NATS before the transaction commits
	assert.Len(t, mockPublisher.PublishedEvents, 0)

	require.NoError(t, transPublisher.Flush(context.Background()))

	// Events arrive in publish order
	require.Len(t, mockPublisher.PublishedEvents, 2)
	assert.Equal(t, created, mockPublisher.PublishedEvents[0])
	assert.Equal(t, matched, mockPublisher.PublishedEvents[1])

	// A second flush must not replay
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 2)
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{
		PublishedEvents: make([]events.Event, 0),
	}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher).(*NATSTransactionalPublisher)

	require.NoError(t, transPublisher.Publish(events.WagerCancelledEvent{
		WagerID:     123,
		CancelledBy: "user-100",
	}))

	transPublisher.Discard()

	// Rolled-back work never produces events
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 0)
}

func TestNATSTransactionalPublisher_FlushToleratesPublishFailure(t *testing.T) {
	mockPublisher := &MockEventPublisher{
		PublishError: errors.New("nats unavailable"),
	}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher).(*NATSTransactionalPublisher)

	require.NoError(t, transPublisher.Publish(events.BalanceChangedEvent{
		UserID:       "user-100",
		OldBalance:   100_000,
		NewBalance:   89_750,
		ChangeAmount: -10_250,
	}))

	// The commit already happened; a publish failure is logged, not returned
	require.NoError(t, transPublisher.Flush(context.Background()))

	// The queue is drained either way
	mockPublisher.PublishError = nil
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 0)
}
