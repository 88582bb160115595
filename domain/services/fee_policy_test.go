package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeePolicy_PlatformFee(t *testing.T) {
	p := NewFeePolicy()

	assert.Equal(t, int64(250), p.PlatformFee(10_000))   // $100 -> $2.50
	assert.Equal(t, int64(15_000), p.PlatformFee(600_000)) // $6,000 -> $150
	assert.Equal(t, int64(3), p.PlatformFee(100))        // $1 -> 3 cents, rounded half-up
}

func TestFeePolicy_EscrowFee_Cliff(t *testing.T) {
	p := NewFeePolicy()

	// The fee is a cliff at the threshold, not a marginal rate
	assert.Equal(t, int64(0), p.EscrowFee(10_000))
	assert.Equal(t, int64(0), p.EscrowFee(EscrowFeeThreshold))
	assert.Equal(t, int64(5_000), p.EscrowFee(EscrowFeeThreshold+1))
	assert.Equal(t, int64(6_000), p.EscrowFee(600_000))
}

func TestFeePolicy_TotalDebit(t *testing.T) {
	p := NewFeePolicy()

	// $100 stake: stake + $2.50 platform fee, no escrow fee
	assert.Equal(t, int64(10_250), p.TotalDebit(10_000))

	// $6,000 stake: stake + $150 platform fee + $60 escrow fee
	assert.Equal(t, int64(621_000), p.TotalDebit(600_000))
}

func TestFeePolicy_Winnings_AmericanOdds(t *testing.T) {
	p := NewFeePolicy()

	// Positive odds: underdog multiplier
	assert.Equal(t, int64(15_000), p.Winnings(10_000, 150))
	// Negative odds: favorite divisor
	assert.Equal(t, int64(5_000), p.Winnings(10_000, -200))
	// Truncation toward zero
	assert.Equal(t, int64(6_666), p.Winnings(10_000, -150))
}

func TestFeePolicy_Payout(t *testing.T) {
	p := NewFeePolicy()

	// $100 at +150: stake + $150 winnings - $2.50 platform fee
	assert.Equal(t, int64(24_750), p.Payout(10_000, 150))

	// $6,000 at -200: both fees come out of the payout
	// 600000 + 300000 - 15000 - 6000
	assert.Equal(t, int64(879_000), p.Payout(600_000, -200))
}

func TestFeePolicy_PushRefund(t *testing.T) {
	p := NewFeePolicy()

	// The platform fee is retained even on a tie
	assert.Equal(t, int64(9_750), p.PushRefund(10_000))
	assert.Equal(t, int64(585_000), p.PushRefund(600_000))
}

func TestFeePolicy_ValidateStake(t *testing.T) {
	p := NewFeePolicy()

	assert.Error(t, p.ValidateStake(0))
	assert.Error(t, p.ValidateStake(MinStake-1))
	assert.NoError(t, p.ValidateStake(MinStake))
	assert.NoError(t, p.ValidateStake(MaxStake))
	assert.Error(t, p.ValidateStake(MaxStake+1))
}

func TestFeePolicy_ValidateOdds(t *testing.T) {
	p := NewFeePolicy()

	assert.Error(t, p.ValidateOdds(0))
	assert.NoError(t, p.ValidateOdds(150))
	assert.NoError(t, p.ValidateOdds(-200))
	assert.NoError(t, p.ValidateOdds(50))
}
