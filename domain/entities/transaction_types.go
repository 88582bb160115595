package entities

// TransactionType represents the type of wallet balance change
type TransactionType string

// All transaction types supported by the system
const (
	// Wager transactions
	TransactionTypeWagerStake  TransactionType = "wager_stake"
	TransactionTypeWagerWin    TransactionType = "wager_win"
	TransactionTypeWagerPush   TransactionType = "wager_push"
	TransactionTypeWagerRefund TransactionType = "wager_refund"

	// Group challenge transactions
	TransactionTypeChallengeEntry  TransactionType = "challenge_entry"
	TransactionTypeChallengeWin    TransactionType = "challenge_win"
	TransactionTypeChallengeRefund TransactionType = "challenge_refund"

	// Wallet funding
	TransactionTypeTopUp TransactionType = "top_up"
)

// IsWinType returns true if the transaction type represents a payout
func (tt TransactionType) IsWinType() bool {
	return tt == TransactionTypeWagerWin ||
		tt == TransactionTypeChallengeWin
}

// IsRefundType returns true if the transaction type represents a refund
func (tt TransactionType) IsRefundType() bool {
	return tt == TransactionTypeWagerPush ||
		tt == TransactionTypeWagerRefund ||
		tt == TransactionTypeChallengeRefund
}

// IsStakeType returns true if the transaction type represents money leaving
// the available balance into a wager or pool
func (tt TransactionType) IsStakeType() bool {
	return tt == TransactionTypeWagerStake ||
		tt == TransactionTypeChallengeEntry
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
