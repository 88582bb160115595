package services

import (
	"fmt"

	"sidebet/domain/domainerrors"
)

// All amounts are integer cents. These constants are the single source of
// truth for fee math; nothing else in the codebase re-derives them.
const (
	// PlatformFeeBasisPoints is the fixed commission on every wager (2.5%)
	PlatformFeeBasisPoints int64 = 250

	// EscrowFeeBasisPoints is the surcharge on large stakes (1%)
	EscrowFeeBasisPoints int64 = 100

	// EscrowFeeThreshold is the stake above which the escrow fee applies.
	// The fee is a cliff, not a marginal rate: a stake at exactly the
	// threshold pays nothing.
	EscrowFeeThreshold int64 = 500_000 // $5,000

	// MinStake and MaxStake bound a single wager's stake
	MinStake int64 = 100       // $1
	MaxStake int64 = 5_000_000 // $50,000
)

// FeePolicy computes platform fees, escrow fees and fee-adjusted payouts.
// It is pure: no state, no side effects.
type FeePolicy struct{}

// NewFeePolicy creates a fee policy
func NewFeePolicy() FeePolicy {
	return FeePolicy{}
}

// roundBasisPoints applies a basis-point rate with half-up rounding to the cent
func roundBasisPoints(amount, bps int64) int64 {
	return (amount*bps + 5_000) / 10_000
}

// PlatformFee returns the fixed commission on a stake
func (FeePolicy) PlatformFee(stake int64) int64 {
	return roundBasisPoints(stake, PlatformFeeBasisPoints)
}

// EscrowFee returns the large-stake surcharge, zero at or below the threshold
func (FeePolicy) EscrowFee(stake int64) int64 {
	if stake > EscrowFeeThreshold {
		return roundBasisPoints(stake, EscrowFeeBasisPoints)
	}
	return 0
}

// TotalDebit returns the full amount removed from a bettor's available
// balance when staking: the stake itself plus all fees
func (p FeePolicy) TotalDebit(stake int64) int64 {
	return stake + p.PlatformFee(stake) + p.EscrowFee(stake)
}

// Fees returns the combined platform and escrow fees on a stake
func (p FeePolicy) Fees(stake int64) int64 {
	return p.PlatformFee(stake) + p.EscrowFee(stake)
}

// Winnings returns the profit on a winning stake at the given American odds:
// positive odds are an underdog multiplier, negative a favorite divisor.
// Winnings truncate toward zero.
func (FeePolicy) Winnings(stake int64, odds int) int64 {
	if odds > 0 {
		return stake * int64(odds) / 100
	}
	if odds < 0 {
		return stake * 100 / int64(-odds)
	}
	return 0
}

// Payout returns the total credited to a winner: stake plus winnings minus
// all fees
func (p FeePolicy) Payout(stake int64, odds int) int64 {
	return stake + p.Winnings(stake, odds) - p.PlatformFee(stake) - p.EscrowFee(stake)
}

// PushRefund returns the refund on a push. The platform fee is retained
// even on a tie.
func (p FeePolicy) PushRefund(stake int64) int64 {
	return stake - p.PlatformFee(stake)
}

// ValidateStake checks a stake against the configured bounds
func (FeePolicy) ValidateStake(stake int64) error {
	if stake < MinStake {
		return domainerrors.NewValidation(fmt.Sprintf("stake must be at least $%d.%02d", MinStake/100, MinStake%100))
	}
	if stake > MaxStake {
		return domainerrors.NewValidation(fmt.Sprintf("stake must not exceed $%d", MaxStake/100))
	}
	return nil
}

// ValidateOdds checks that odds are a usable American-odds value
func (FeePolicy) ValidateOdds(odds int) error {
	if odds == 0 {
		return domainerrors.NewValidation("odds must be a nonzero American-odds value")
	}
	return nil
}
