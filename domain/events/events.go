package events

import "sidebet/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWagerCreated           EventType = "wager_created"
	EventTypeWagerMatched           EventType = "wager_matched"
	EventTypeWagerResolved          EventType = "wager_resolved"
	EventTypeWagerExpired           EventType = "wager_expired"
	EventTypeWagerCancelled         EventType = "wager_cancelled"
	EventTypeEscrowReleased         EventType = "escrow_released"
	EventTypeEscrowDisputed         EventType = "escrow_disputed"
	EventTypeBalanceChanged         EventType = "balance_changed"
	EventTypeGroupChallengeCreated  EventType = "group_challenge_created"
	EventTypeGroupChallengeFunded   EventType = "group_challenge_funded"
	EventTypeGroupChallengeResolved EventType = "group_challenge_resolved"
	EventTypeGroupChallengeExpired  EventType = "group_challenge_expired"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WagerCreatedEvent is emitted when a wager is opened and funded
type WagerCreatedEvent struct {
	WagerID   int64
	CreatorID string
	Stake     int64
	Odds      int
	Selection string
}

func (e WagerCreatedEvent) Type() EventType { return EventTypeWagerCreated }

// WagerMatchedEvent is emitted when an opponent accepts an open wager
type WagerMatchedEvent struct {
	WagerID    int64
	CreatorID  string
	OpponentID string
	Stake      int64
}

func (e WagerMatchedEvent) Type() EventType { return EventTypeWagerMatched }

// WagerResolvedEvent is emitted when settlement completes a wager
type WagerResolvedEvent struct {
	WagerID  int64
	Outcome  string
	WinnerID string // empty on push
	Payout   int64  // cents credited to the winner, zero on push
}

func (e WagerResolvedEvent) Type() EventType { return EventTypeWagerResolved }

// WagerExpiredEvent is emitted when an open wager passes its expiry
type WagerExpiredEvent struct {
	WagerID   int64
	CreatorID string
	Refund    int64
}

func (e WagerExpiredEvent) Type() EventType { return EventTypeWagerExpired }

// WagerCancelledEvent is emitted when a wager is cancelled before settlement
type WagerCancelledEvent struct {
	WagerID     int64
	CancelledBy string
}

func (e WagerCancelledEvent) Type() EventType { return EventTypeWagerCancelled }

// EscrowReleasedEvent is emitted when held funds are released
type EscrowReleasedEvent struct {
	EscrowID int64
	UserID   string
	Amount   int64
}

func (e EscrowReleasedEvent) Type() EventType { return EventTypeEscrowReleased }

// EscrowDisputedEvent is emitted when an operator disputes a held record
type EscrowDisputedEvent struct {
	EscrowID int64
	UserID   string
	RaisedBy string
}

func (e EscrowDisputedEvent) Type() EventType { return EventTypeEscrowDisputed }

// BalanceChangedEvent represents a wallet balance change that occurred
type BalanceChangedEvent struct {
	UserID          string
	OldBalance      int64
	NewBalance      int64
	ChangeAmount    int64
	TransactionType entities.TransactionType
}

func (e BalanceChangedEvent) Type() EventType { return EventTypeBalanceChanged }

// GroupChallengeCreatedEvent is emitted when a pool opens
type GroupChallengeCreatedEvent struct {
	ChallengeID  int64
	CreatorID    string
	EntryFee     int64
	TargetAmount int64
}

func (e GroupChallengeCreatedEvent) Type() EventType { return EventTypeGroupChallengeCreated }

// GroupChallengeFundedEvent is emitted when the pot reaches its target
type GroupChallengeFundedEvent struct {
	ChallengeID  int64
	Pot          int64
	Contributors int
}

func (e GroupChallengeFundedEvent) Type() EventType { return EventTypeGroupChallengeFunded }

// GroupChallengeResolvedEvent is emitted when a pool pays out
type GroupChallengeResolvedEvent struct {
	ChallengeID int64
	WinnerID    string
	Payout      int64
}

func (e GroupChallengeResolvedEvent) Type() EventType { return EventTypeGroupChallengeResolved }

// GroupChallengeExpiredEvent is emitted when an unfilled pool expires
type GroupChallengeExpiredEvent struct {
	ChallengeID int64
	Refunded    int
}

func (e GroupChallengeExpiredEvent) Type() EventType { return EventTypeGroupChallengeExpired }
