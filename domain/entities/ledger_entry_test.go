package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerEntry_Validate(t *testing.T) {
	valid := &LedgerEntry{
		UserID:          "user-100",
		BalanceBefore:   1_000,
		BalanceAfter:    750,
		ChangeAmount:    -250,
		TransactionType: TransactionTypeWagerStake,
	}
	assert.NoError(t, valid.Validate())

	zeroChange := &LedgerEntry{BalanceBefore: 1_000, BalanceAfter: 1_000}
	assert.Error(t, zeroChange.Validate())

	inconsistent := &LedgerEntry{BalanceBefore: 1_000, BalanceAfter: 900, ChangeAmount: -250}
	assert.Error(t, inconsistent.Validate())
}

func TestLedgerEntry_IsPositiveChange(t *testing.T) {
	assert.True(t, (&LedgerEntry{ChangeAmount: 100}).IsPositiveChange())
	assert.False(t, (&LedgerEntry{ChangeAmount: -100}).IsPositiveChange())
}
