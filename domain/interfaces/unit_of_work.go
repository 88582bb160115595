package interfaces

import (
	"context"
)

// UnitOfWork defines the interface for transactional repository operations.
// Every multi-entity mutation in the system runs inside exactly one unit of
// work: either all of its writes commit, or none do.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	WalletRepository() WalletRepository
	WagerRepository() WagerRepository
	EscrowRepository() EscrowRepository
	GroupChallengeRepository() GroupChallengeRepository
	LedgerRepository() LedgerRepository

	// EventBus returns the transactional event publisher for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
