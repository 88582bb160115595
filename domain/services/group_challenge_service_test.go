package services

import (
	"context"
	"testing"
	"time"

	"sidebet/domain/domainerrors"
	"sidebet/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testEntryFee     = int64(10_000) // $100
	testEntryFees    = int64(250)    // platform fee on one entry
	testTargetAmount = int64(20_000) // $200, two entries
)

func newChallengeServiceForTest(mocks *TestMocks) *groupChallengeService {
	walletSvc := NewWalletService(mocks.WalletRepo, mocks.LedgerRepo, mocks.EventPublisher)
	return NewGroupChallengeService(walletSvc, mocks.WalletRepo, mocks.ChallengeRepo, mocks.EscrowRepo, mocks.EventPublisher).(*groupChallengeService)
}

// newOpenChallenge builds an open challenge with one contribution already in
func newOpenChallenge(creatorID string) *entities.GroupChallenge {
	return &entities.GroupChallenge{
		ID:              TestChallengeID,
		CreatorID:       creatorID,
		Title:           "biggest parlay of the week",
		EntryFee:        testEntryFee,
		TargetAmount:    testTargetAmount,
		CurrentAmount:   testEntryFee,
		MinParticipants: 2,
		Status:          entities.GroupChallengeStatusOpen,
		ExpiresAt:       time.Now().Add(24 * time.Hour),
	}
}

// newChallengeEscrow builds a held escrow record against a challenge
func newChallengeEscrow(id int64, userID string, challengeID, amount int64) *entities.EscrowRecord {
	return &entities.EscrowRecord{
		ID:               id,
		UserID:           userID,
		GroupChallengeID: &challengeID,
		Amount:           amount,
		Status:           entities.EscrowStatusHeld,
	}
}

func TestGroupChallengeService_Create_CreatorContributesFirst(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	wallet := NewTestWallet(TestUser1ID)
	mocks.ChallengeRepo.On("Create", ctx, mock.MatchedBy(func(c *entities.GroupChallenge) bool {
		return c.CreatorID == TestUser1ID &&
			c.EntryFee == testEntryFee &&
			c.Status == entities.GroupChallengeStatusOpen
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.GroupChallenge).ID = TestChallengeID
	})
	mocks.WalletRepo.On("GetForUpdate", ctx, TestUser1ID).Return(wallet, nil)
	mocks.WalletRepo.On("UpdateBalances", ctx, wallet).Return(nil)
	mocks.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.UserID == TestUser1ID &&
			e.ChangeAmount == -testEntryFees &&
			e.TransactionType == entities.TransactionTypeChallengeEntry &&
			e.RelatedID != nil && *e.RelatedID == TestChallengeID
	})).Return(nil)
	mocks.EscrowRepo.On("Create", ctx, mock.MatchedBy(func(r *entities.EscrowRecord) bool {
		return r.UserID == TestUser1ID &&
			r.GroupChallengeID != nil && *r.GroupChallengeID == TestChallengeID &&
			r.Amount == testEntryFee
	})).Return(nil)
	mocks.ChallengeRepo.On("Update", ctx, mock.AnythingOfType("*entities.GroupChallenge")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangedEvent")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.GroupChallengeCreatedEvent")).Return(nil)

	challenge, err := service.Create(ctx, TestUser1ID, "biggest parlay of the week", "", testEntryFee, testTargetAmount, 2, 0, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, testEntryFee, challenge.CurrentAmount)
	assert.Equal(t, 1, challenge.ParticipantCount())
	assert.True(t, challenge.IsOpen())
	// Entry fee moved to escrow, platform fee realized immediately
	assert.Equal(t, TestInitialBalance-testEntryFee-testEntryFees, wallet.AvailableBalance)
	assert.Equal(t, testEntryFee, wallet.EscrowBalance)
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Create_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	cases := []struct {
		name         string
		title        string
		entryFee     int64
		targetAmount int64
		minPart      int
		maxPart      int
		expiresIn    time.Duration
	}{
		{"empty title", " ", testEntryFee, testTargetAmount, 2, 0, time.Hour},
		{"entry fee below floor", "c", 50, testTargetAmount, 2, 0, time.Hour},
		{"target below entry fee", "c", testEntryFee, 5_000, 2, 0, time.Hour},
		{"target not a multiple of entry fee", "c", testEntryFee, 25_000, 2, 0, time.Hour},
		{"min participants below two", "c", testEntryFee, testTargetAmount, 1, 0, time.Hour},
		{"max below min", "c", testEntryFee, 50_000, 4, 3, time.Hour},
		{"expiry in the past", "c", testEntryFee, testTargetAmount, 2, 0, -time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(ctx, TestUser1ID, tc.title, "", tc.entryFee, tc.targetAmount, tc.minPart, tc.maxPart, tc.expiresIn)
			assert.True(t, domainerrors.IsValidation(err))
		})
	}
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Contribute_ReachingTargetFundsChallenge(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	wallet := NewTestWallet(TestUser2ID)

	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)
	mocks.ChallengeRepo.On("HasContribution", ctx, TestChallengeID, TestUser2ID).Return(false, nil)
	mocks.WalletRepo.On("GetForUpdate", ctx, TestUser2ID).Return(wallet, nil)
	mocks.WalletRepo.On("UpdateBalances", ctx, wallet).Return(nil)
	mocks.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.ChangeAmount == -testEntryFees && e.TransactionType == entities.TransactionTypeChallengeEntry
	})).Return(nil)
	mocks.EscrowRepo.On("Create", ctx, mock.AnythingOfType("*entities.EscrowRecord")).Return(nil)
	mocks.ChallengeRepo.On("Update", ctx, challenge).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangedEvent")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.GroupChallengeFundedEvent")).Return(nil)

	updated, err := service.Contribute(ctx, TestChallengeID, TestUser2ID)

	require.NoError(t, err)
	assert.True(t, updated.IsFunded())
	assert.Equal(t, testTargetAmount, updated.CurrentAmount)
	assert.Equal(t, 2, updated.ParticipantCount())
	// Contribution debits entry fee plus fees, escrowing the entry only
	assert.Equal(t, TestInitialBalance-testEntryFee-testEntryFees, wallet.AvailableBalance)
	assert.Equal(t, testEntryFee, wallet.EscrowBalance)
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Contribute_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)
	mocks.ChallengeRepo.On("HasContribution", ctx, TestChallengeID, TestUser1ID).Return(true, nil)

	_, err := service.Contribute(ctx, TestChallengeID, TestUser1ID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Contribute_FullChallengeRejected(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	challenge.TargetAmount = 50_000
	challenge.MaxParticipants = 1

	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)

	_, err := service.Contribute(ctx, TestChallengeID, TestUser2ID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsInvalidState(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Contribute_FundedChallengeRejected(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	challenge.Status = entities.GroupChallengeStatusFunded

	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)

	_, err := service.Contribute(ctx, TestChallengeID, TestUser3ID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsInvalidState(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Contribute_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	// Can cover the entry fee but not the fees on top
	wallet := &entities.Wallet{UserID: TestUser2ID, AvailableBalance: testEntryFee}

	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)
	mocks.ChallengeRepo.On("HasContribution", ctx, TestChallengeID, TestUser2ID).Return(false, nil)
	mocks.WalletRepo.On("GetForUpdate", ctx, TestUser2ID).Return(wallet, nil)

	_, err := service.Contribute(ctx, TestChallengeID, TestUser2ID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsInsufficientFunds(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Resolve_WinnerTakesPot(t *testing.T) {
	setResolverConfig(t)

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	challenge.CurrentAmount = testTargetAmount
	challenge.Status = entities.GroupChallengeStatusFunded

	winnerWallet := &entities.Wallet{UserID: TestUser2ID, AvailableBalance: 89_750, EscrowBalance: testEntryFee}
	loserWallet := &entities.Wallet{UserID: TestUser1ID, AvailableBalance: 89_750, EscrowBalance: testEntryFee}

	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)
	mocks.ChallengeRepo.On("HasContribution", ctx, TestChallengeID, TestUser2ID).Return(true, nil)
	mocks.EscrowRepo.On("GetByChallenge", ctx, TestChallengeID).Return([]*entities.EscrowRecord{
		newChallengeEscrow(1, TestUser1ID, TestChallengeID, testEntryFee),
		newChallengeEscrow(2, TestUser2ID, TestChallengeID, testEntryFee),
	}, nil)
	mocks.ChallengeRepo.On("Update", ctx, challenge).Return(nil)
	mocks.WalletRepo.On("GetForUpdate", ctx, TestUser1ID).Return(loserWallet, nil)
	mocks.WalletRepo.On("GetForUpdate", ctx, TestUser2ID).Return(winnerWallet, nil)
	mocks.WalletRepo.On("UpdateBalances", ctx, mock.AnythingOfType("*entities.Wallet")).Return(nil)
	mocks.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.UserID == TestUser2ID &&
			e.ChangeAmount == testTargetAmount &&
			e.TransactionType == entities.TransactionTypeChallengeWin
	})).Return(nil)
	mocks.EscrowRepo.On("Release", ctx, mock.AnythingOfType("int64")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangedEvent")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.GroupChallengeResolvedEvent")).Return(nil)

	resolved, err := service.Resolve(ctx, TestChallengeID, TestUser2ID, TestResolverID)

	require.NoError(t, err)
	assert.Equal(t, entities.GroupChallengeStatusCompleted, resolved.Status)
	require.NotNil(t, resolved.WinnerID)
	assert.Equal(t, TestUser2ID, *resolved.WinnerID)

	// Winner collects the whole pot on top of their released entry
	assert.Equal(t, int64(109_750), winnerWallet.AvailableBalance)
	assert.Zero(t, winnerWallet.EscrowBalance)
	// Losing contributor forfeits the entry fee; fees were realized at entry
	assert.Equal(t, int64(89_750), loserWallet.AvailableBalance)
	assert.Zero(t, loserWallet.EscrowBalance)
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Resolve_WinnerMustBeContributor(t *testing.T) {
	setResolverConfig(t)

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	challenge.CurrentAmount = testTargetAmount
	challenge.Status = entities.GroupChallengeStatusFunded

	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)
	mocks.ChallengeRepo.On("HasContribution", ctx, TestChallengeID, TestUser3ID).Return(false, nil)

	_, err := service.Resolve(ctx, TestChallengeID, TestUser3ID, TestResolverID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Resolve_UnfundedRejected(t *testing.T) {
	setResolverConfig(t)

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)

	_, err := service.Resolve(ctx, TestChallengeID, TestUser1ID, TestResolverID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsInvalidState(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Resolve_UnauthorizedResolver(t *testing.T) {
	setResolverConfig(t)

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	_, err := service.Resolve(ctx, TestChallengeID, TestUser1ID, TestUser2ID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_Resolve_DisputedEscrowBlocksSettlement(t *testing.T) {
	setResolverConfig(t)

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	challenge := newOpenChallenge(TestUser1ID)
	challenge.CurrentAmount = testTargetAmount
	challenge.Status = entities.GroupChallengeStatusFunded

	disputed := newChallengeEscrow(2, TestUser2ID, TestChallengeID, testEntryFee)
	disputed.Status = entities.EscrowStatusDisputed

	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)
	mocks.ChallengeRepo.On("HasContribution", ctx, TestChallengeID, TestUser2ID).Return(true, nil)
	mocks.EscrowRepo.On("GetByChallenge", ctx, TestChallengeID).Return([]*entities.EscrowRecord{
		newChallengeEscrow(1, TestUser1ID, TestChallengeID, testEntryFee),
		disputed,
	}, nil)

	_, err := service.Resolve(ctx, TestChallengeID, TestUser2ID, TestResolverID)

	require.Error(t, err)
	assert.True(t, domainerrors.IsInvalidState(err))
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_ExpireDue_RefundsContributors(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	now := time.Now()
	challenge := newOpenChallenge(TestUser1ID)
	challenge.ExpiresAt = now.Add(-time.Hour)
	wallet := &entities.Wallet{UserID: TestUser1ID, AvailableBalance: 89_750, EscrowBalance: testEntryFee}

	mocks.ChallengeRepo.On("GetExpired", ctx, now, 100).Return([]*entities.GroupChallenge{challenge}, nil)
	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(challenge, nil)
	mocks.ChallengeRepo.On("Update", ctx, challenge).Return(nil)
	mocks.EscrowRepo.On("GetByChallenge", ctx, TestChallengeID).Return([]*entities.EscrowRecord{
		newChallengeEscrow(1, TestUser1ID, TestChallengeID, testEntryFee),
	}, nil)
	mocks.WalletRepo.On("GetForUpdate", ctx, TestUser1ID).Return(wallet, nil)
	mocks.WalletRepo.On("UpdateBalances", ctx, wallet).Return(nil)
	mocks.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.ChangeAmount == testEntryFee+testEntryFees && e.TransactionType == entities.TransactionTypeChallengeRefund
	})).Return(nil)
	mocks.EscrowRepo.On("Release", ctx, int64(1)).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangedEvent")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.GroupChallengeExpiredEvent")).Return(nil)

	expired, err := service.ExpireDue(ctx, now, 100)

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, entities.GroupChallengeStatusExpired, challenge.Status)
	// Entry fee and fees both come back; the pool never engaged
	assert.Equal(t, TestInitialBalance, wallet.AvailableBalance)
	assert.Zero(t, wallet.EscrowBalance)
	mocks.AssertAllExpectations(t)
}

func TestGroupChallengeService_ExpireDue_SkipsChallengesFundedMidSweep(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newChallengeServiceForTest(mocks)

	now := time.Now()
	stale := newOpenChallenge(TestUser1ID)

	funded := newOpenChallenge(TestUser1ID)
	funded.Status = entities.GroupChallengeStatusFunded

	mocks.ChallengeRepo.On("GetExpired", ctx, now, 100).Return([]*entities.GroupChallenge{stale}, nil)
	mocks.ChallengeRepo.On("GetForUpdate", ctx, TestChallengeID).Return(funded, nil)

	expired, err := service.ExpireDue(ctx, now, 100)

	require.NoError(t, err)
	assert.Zero(t, expired)
	mocks.AssertAllExpectations(t)
}
