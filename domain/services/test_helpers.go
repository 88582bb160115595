package services

import (
	"testing"

	"sidebet/domain/entities"
	"sidebet/domain/testhelpers"
)

// Test constants for consistent test data
const (
	TestUser1ID     = "user-100"
	TestUser2ID     = "user-200"
	TestUser3ID     = "user-300"
	TestResolverID  = "operator-999"
	TestWagerID     = int64(1)
	TestChallengeID = int64(1)
	TestEscrowID    = int64(1)

	TestInitialBalance = int64(100_000) // $1,000
	TestStake          = int64(10_000)  // $100
	TestOdds           = 150
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	WalletRepo     *testhelpers.MockWalletRepository
	WagerRepo      *testhelpers.MockWagerRepository
	EscrowRepo     *testhelpers.MockEscrowRepository
	ChallengeRepo  *testhelpers.MockGroupChallengeRepository
	LedgerRepo     *testhelpers.MockLedgerRepository
	EventPublisher *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		WalletRepo:     &testhelpers.MockWalletRepository{},
		WagerRepo:      &testhelpers.MockWagerRepository{},
		EscrowRepo:     &testhelpers.MockEscrowRepository{},
		ChallengeRepo:  &testhelpers.MockGroupChallengeRepository{},
		LedgerRepo:     &testhelpers.MockLedgerRepository{},
		EventPublisher: &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.WalletRepo.AssertExpectations(t)
	m.WagerRepo.AssertExpectations(t)
	m.EscrowRepo.AssertExpectations(t)
	m.ChallengeRepo.AssertExpectations(t)
	m.LedgerRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// NewTestWallet builds a wallet with the standard test balance
func NewTestWallet(userID string) *entities.Wallet {
	return &entities.Wallet{
		UserID:           userID,
		AvailableBalance: TestInitialBalance,
	}
}

// NewTestWager builds an open wager with the standard test stake and odds
func NewTestWager(creatorID string) *entities.Wager {
	return &entities.Wager{
		ID:        TestWagerID,
		CreatorID: creatorID,
		Stake:     TestStake,
		Selection: "home team wins",
		Odds:      TestOdds,
		Status:    entities.WagerStatusOpen,
		Outcome:   entities.WagerOutcomeUnset,
	}
}

// NewMatchedTestWager builds a matched wager between two test users
func NewMatchedTestWager(creatorID, opponentID string) *entities.Wager {
	wager := NewTestWager(creatorID)
	wager.OpponentID = &opponentID
	wager.Status = entities.WagerStatusMatched
	return wager
}

// NewHeldEscrow builds a held escrow record against a wager
func NewHeldEscrow(id int64, userID string, wagerID, amount int64) *entities.EscrowRecord {
	return &entities.EscrowRecord{
		ID:      id,
		UserID:  userID,
		WagerID: &wagerID,
		Amount:  amount,
		Status:  entities.EscrowStatusHeld,
	}
}
