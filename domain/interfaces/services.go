package interfaces

import (
	"context"
	"time"

	"sidebet/domain/entities"
)

// LedgerRef ties a wallet mutation to the entity that caused it
type LedgerRef struct {
	RelatedID   int64
	RelatedType entities.RelatedType
	Metadata    map[string]any
}

// WalletService owns all balance mutations. Every operation writes a ledger
// entry and emits a BalanceChanged event; no operation may leave a balance
// negative.
type WalletService interface {
	// GetOrCreate returns the user's wallet, creating an empty one on first touch
	GetOrCreate(ctx context.Context, userID string) (*entities.Wallet, error)

	// TopUp credits funds arriving from the external checkout processor
	TopUp(ctx context.Context, userID string, amount int64) (*entities.Wallet, error)

	// Debit decreases the available balance, failing with InsufficientFunds
	// if the amount exceeds it
	Debit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, ref *LedgerRef) error

	// Credit increases the available balance
	Credit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, ref *LedgerRef) error

	// MoveToEscrow moves funds from available to escrow-held, failing with
	// InsufficientFunds if unavailable
	MoveToEscrow(ctx context.Context, userID string, amount int64) error

	// ReleaseFromEscrow decreases the escrow-held balance, floored at zero.
	// The corresponding credit, if any, is a separate settlement step.
	ReleaseFromEscrow(ctx context.Context, userID string, amount int64) error

	// History returns the user's ledger entries, newest first
	History(ctx context.Context, userID string, limit int) ([]*entities.LedgerEntry, error)
}

// WagerService owns the wager lifecycle up to settlement
type WagerService interface {
	// Create validates the stake, debits the creator for stake plus fees,
	// escrows the stake and opens the wager
	Create(ctx context.Context, creatorID string, stake int64, selection string, odds int, vigPercent float64, expiresIn time.Duration) (*entities.Wager, error)

	// Match accepts an open wager, debiting and escrowing the opponent
	// symmetrically
	Match(ctx context.Context, wagerID int64, opponentID string) (*entities.Wager, error)

	// Cancel cancels an open wager (creator) or a matched wager (operator),
	// refunding all debits in full
	Cancel(ctx context.Context, wagerID int64, cancelledBy string) (*entities.Wager, error)

	// ExpireDue transitions open wagers past expiry, refunding the creator's
	// full debit. Returns the number of wagers expired.
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)

	// GetByID retrieves a wager
	GetByID(ctx context.Context, wagerID int64) (*entities.Wager, error)

	// GetActiveByUser returns the user's open and matched wagers
	GetActiveByUser(ctx context.Context, userID string) ([]*entities.Wager, error)
}

// SettlementService orchestrates wager resolution: fee computation, wallet
// credits, escrow finalization and the terminal state transition, all within
// the enclosing unit of work.
type SettlementService interface {
	// Resolve settles a wager with the given outcome. The outcome is from the
	// creator's perspective: win credits the creator, loss credits the
	// opponent, push refunds both sides minus the platform fee.
	Resolve(ctx context.Context, wagerID int64, outcome entities.WagerOutcome, resolvedBy string) (*entities.Wager, error)

	// DisputeEscrow marks a held escrow record as disputed, excluding it from
	// automatic settlement. Operator only.
	DisputeEscrow(ctx context.Context, escrowID int64, raisedBy string) error

	// GenerateMockResults auto-resolves up to limit resolvable wagers with
	// random outcomes. Only callable in simulation mode.
	GenerateMockResults(ctx context.Context, limit int) (int, error)
}

// GroupChallengeService owns the pooled-wager lifecycle
type GroupChallengeService interface {
	// Create opens a new challenge and escrows the creator's entry fee
	Create(ctx context.Context, creatorID, title, description string, entryFee, targetAmount int64, minParticipants, maxParticipants int, expiresIn time.Duration) (*entities.GroupChallenge, error)

	// Contribute debits and escrows one entry fee for the user, transitioning
	// the challenge to funded when the target or participant cap is reached
	Contribute(ctx context.Context, challengeID int64, userID string) (*entities.GroupChallenge, error)

	// Resolve pays the full pot to the winner and releases all contributions
	Resolve(ctx context.Context, challengeID int64, winnerID string, resolvedBy string) (*entities.GroupChallenge, error)

	// ExpireDue transitions open challenges past expiry, refunding every
	// contributor in full. Returns the number of challenges expired.
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)

	// GetByID retrieves a challenge
	GetByID(ctx context.Context, challengeID int64) (*entities.GroupChallenge, error)
}
