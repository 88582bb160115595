package entities

import (
	"errors"
	"time"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeWager          RelatedType = "wager"
	RelatedTypeGroupChallenge RelatedType = "group_challenge"
	RelatedTypeEscrow         RelatedType = "escrow"
)

// LedgerEntry represents a historical change to a wallet's available balance.
// Every settlement, stake, refund and top-up writes exactly one entry per
// affected wallet; the ledger is the audit trail consumed by compliance.
type LedgerEntry struct {
	ID                  int64           `db:"id"`
	UserID              string          `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsPositiveChange returns true if the change amount is positive
func (le *LedgerEntry) IsPositiveChange() bool {
	return le.ChangeAmount > 0
}

// Validate performs basic consistency checks on the entry
func (le *LedgerEntry) Validate() error {
	if le.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}
	if le.BalanceAfter != le.BalanceBefore+le.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}
	return nil
}
