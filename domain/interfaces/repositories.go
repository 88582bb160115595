package interfaces

import (
	"context"
	"time"

	"sidebet/domain/entities"
	"sidebet/domain/events"
)

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUserID retrieves a wallet, or nil if the user has none yet
	GetByUserID(ctx context.Context, userID string) (*entities.Wallet, error)

	// GetForUpdate retrieves a wallet and locks its row for the duration of
	// the enclosing transaction. Concurrent operations on the same wallet
	// serialize on this lock.
	GetForUpdate(ctx context.Context, userID string) (*entities.Wallet, error)

	// Create creates an empty wallet for the user
	Create(ctx context.Context, userID string) (*entities.Wallet, error)

	// UpdateBalances persists the wallet's available and escrow balances
	UpdateBalances(ctx context.Context, wallet *entities.Wallet) error
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create creates a new wager
	Create(ctx context.Context, wager *entities.Wager) error

	// GetByID retrieves a wager by its ID, or nil if absent
	GetByID(ctx context.Context, id int64) (*entities.Wager, error)

	// Update updates a wager's state and related fields
	Update(ctx context.Context, wager *entities.Wager) error

	// UpdateStatusGuarded persists the wager only if its row is currently in
	// one of the allowed statuses. Returns false when the guard fails, which
	// is how concurrent settlement attempts lose the race.
	UpdateStatusGuarded(ctx context.Context, wager *entities.Wager, allowed []entities.WagerStatus) (bool, error)

	// GetActiveByUser returns open and matched wagers the user participates in
	GetActiveByUser(ctx context.Context, userID string) ([]*entities.Wager, error)

	// GetExpired returns open wagers whose expiry has passed
	GetExpired(ctx context.Context, now time.Time, limit int) ([]*entities.Wager, error)

	// GetResolvable returns wagers still eligible for settlement
	GetResolvable(ctx context.Context, limit int) ([]*entities.Wager, error)
}

// EscrowRepository defines the interface for escrow record data access
type EscrowRepository interface {
	// Create creates a new held escrow record
	Create(ctx context.Context, record *entities.EscrowRecord) error

	// GetByID retrieves an escrow record, or nil if absent
	GetByID(ctx context.Context, id int64) (*entities.EscrowRecord, error)

	// GetByWager returns all escrow records held against a wager
	GetByWager(ctx context.Context, wagerID int64) ([]*entities.EscrowRecord, error)

	// GetByChallenge returns all escrow records held against a group challenge
	GetByChallenge(ctx context.Context, challengeID int64) ([]*entities.EscrowRecord, error)

	// Release transitions a record to released. Releasing an already-released
	// record is a no-op, not an error.
	Release(ctx context.Context, id int64) error

	// Dispute transitions a held record to disputed. Returns false if the
	// record was not in the held state.
	Dispute(ctx context.Context, id int64) (bool, error)
}

// GroupChallengeRepository defines the interface for group challenge data access
type GroupChallengeRepository interface {
	// Create creates a new group challenge
	Create(ctx context.Context, challenge *entities.GroupChallenge) error

	// GetByID retrieves a challenge by its ID, or nil if absent
	GetByID(ctx context.Context, id int64) (*entities.GroupChallenge, error)

	// GetForUpdate retrieves a challenge and locks its row for the duration of
	// the enclosing transaction. Concurrent contributions serialize on this lock.
	GetForUpdate(ctx context.Context, id int64) (*entities.GroupChallenge, error)

	// Update updates a challenge's state and collected amount
	Update(ctx context.Context, challenge *entities.GroupChallenge) error

	// HasContribution reports whether the user already contributed
	HasContribution(ctx context.Context, challengeID int64, userID string) (bool, error)

	// GetExpired returns open challenges whose expiry has passed
	GetExpired(ctx context.Context, now time.Time, limit int) ([]*entities.GroupChallenge, error)
}

// LedgerRepository defines the interface for the wallet audit ledger
type LedgerRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByUser returns ledger entries for a user, newest first
	GetByUser(ctx context.Context, userID string, limit int) ([]*entities.LedgerEntry, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the enclosing database
// transaction commits. Flush publishes the pending queue, Discard drops it.
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
