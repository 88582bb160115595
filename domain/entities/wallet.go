package entities

import (
	"errors"
	"time"
)

// Wallet represents a user's custodial balance, split into funds that are
// freely spendable and funds held in escrow against active wagers.
// All amounts are integer cents.
type Wallet struct {
	UserID            string    `db:"user_id"`
	AvailableBalance  int64     `db:"available_balance"`
	EscrowBalance     int64     `db:"escrow_balance"`
	DailyPayoutLimit  int64     `db:"daily_payout_limit"`
	WeeklyPayoutLimit int64     `db:"weekly_payout_limit"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// CanAfford checks if the wallet has sufficient available balance for an amount
func (w *Wallet) CanAfford(amount int64) bool {
	return w.AvailableBalance >= amount
}

// Shortfall returns how many cents short the wallet is of the given amount,
// or zero if the amount is affordable
func (w *Wallet) Shortfall(amount int64) int64 {
	if w.AvailableBalance >= amount {
		return 0
	}
	return amount - w.AvailableBalance
}

// TotalBalance returns available plus escrow-held funds
func (w *Wallet) TotalBalance() int64 {
	return w.AvailableBalance + w.EscrowBalance
}

// ValidateAmount checks if an amount is valid (positive and affordable)
func (w *Wallet) ValidateAmount(amount int64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	if !w.CanAfford(amount) {
		return errors.New("insufficient available balance")
	}
	return nil
}
