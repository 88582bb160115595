package infrastructure

import (
	"fmt"

	"sidebet/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeWagerCreated:
		return "wagers.created"
	case events.EventTypeWagerMatched:
		return "wagers.matched"
	case events.EventTypeWagerResolved:
		return "wagers.resolved"
	case events.EventTypeWagerExpired:
		return "wagers.expired"
	case events.EventTypeWagerCancelled:
		return "wagers.cancelled"
	case events.EventTypeEscrowReleased:
		return "escrow.released"
	case events.EventTypeEscrowDisputed:
		return "escrow.disputed"
	case events.EventTypeBalanceChanged:
		return "wallets.balance_changed"
	case events.EventTypeGroupChallengeCreated:
		return "challenges.created"
	case events.EventTypeGroupChallengeFunded:
		return "challenges.funded"
	case events.EventTypeGroupChallengeResolved:
		return "challenges.resolved"
	case events.EventTypeGroupChallengeExpired:
		return "challenges.expired"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"wagers.created",
		"wagers.matched",
		"wagers.resolved",
		"wagers.expired",
		"wagers.cancelled",
		"escrow.released",
		"escrow.disputed",
		"wallets.balance_changed",
		"challenges.created",
		"challenges.funded",
		"challenges.resolved",
		"challenges.expired",
	}
}
