package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWallet_Shortfall(t *testing.T) {
	w := &Wallet{AvailableBalance: 1_000}

	assert.Zero(t, w.Shortfall(1_000))
	assert.Zero(t, w.Shortfall(500))
	assert.Equal(t, int64(250), w.Shortfall(1_250))
}

func TestWallet_TotalBalance(t *testing.T) {
	w := &Wallet{AvailableBalance: 1_000, EscrowBalance: 500}
	assert.Equal(t, int64(1_500), w.TotalBalance())
}

func TestWallet_ValidateAmount(t *testing.T) {
	w := &Wallet{AvailableBalance: 1_000}

	assert.NoError(t, w.ValidateAmount(1_000))
	assert.Error(t, w.ValidateAmount(0))
	assert.Error(t, w.ValidateAmount(-100))
	assert.Error(t, w.ValidateAmount(1_001))
}
