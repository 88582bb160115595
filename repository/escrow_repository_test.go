package repository

import (
	"context"
	"testing"
	"time"

	"sidebet/domain/entities"
	"sidebet/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrowRepository_Lifecycle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	walletRepo := NewWalletRepository(testDB.DB)
	wagerRepo := NewWagerRepository(testDB.DB)
	repo := NewEscrowRepository(testDB.DB)

	_, err := walletRepo.Create(ctx, "user-100")
	require.NoError(t, err)
	wager := openTestWager("user-100", time.Now().Add(time.Hour))
	require.NoError(t, wagerRepo.Create(ctx, wager))

	record := &entities.EscrowRecord{
		UserID:  "user-100",
		WagerID: &wager.ID,
		Amount:  10_000,
		Status:  entities.EscrowStatusHeld,
	}
	require.NoError(t, repo.Create(ctx, record))
	assert.True(t, record.ID > 0)

	t.Run("get by wager", func(t *testing.T) {
		records, err := repo.GetByWager(ctx, wager.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "user-100", records[0].UserID)
		assert.Equal(t, int64(10_000), records[0].Amount)
		assert.True(t, records[0].IsHeld())
	})

	t.Run("release is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Release(ctx, record.ID))

		stored, err := repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsReleased())
		require.NotNil(t, stored.ReleasedAt)
		releasedAt := *stored.ReleasedAt

		// A settlement retry releasing again must not error or move the timestamp
		require.NoError(t, repo.Release(ctx, record.ID))
		stored, err = repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, releasedAt, *stored.ReleasedAt)
	})

	t.Run("released record cannot be disputed", func(t *testing.T) {
		ok, err := repo.Dispute(ctx, record.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEscrowRepository_Dispute(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	walletRepo := NewWalletRepository(testDB.DB)
	wagerRepo := NewWagerRepository(testDB.DB)
	repo := NewEscrowRepository(testDB.DB)

	_, err := walletRepo.Create(ctx, "user-100")
	require.NoError(t, err)
	wager := openTestWager("user-100", time.Now().Add(time.Hour))
	require.NoError(t, wagerRepo.Create(ctx, wager))

	record := &entities.EscrowRecord{
		UserID:  "user-100",
		WagerID: &wager.ID,
		Amount:  10_000,
		Status:  entities.EscrowStatusHeld,
	}
	require.NoError(t, repo.Create(ctx, record))

	ok, err := repo.Dispute(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDisputed())

	// Disputing twice fails the guard
	ok, err = repo.Dispute(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEscrowRepository_RequiresWallet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	walletRepo := NewWalletRepository(testDB.DB)
	wagerRepo := NewWagerRepository(testDB.DB)
	repo := NewEscrowRepository(testDB.DB)

	_, err := walletRepo.Create(ctx, "user-100")
	require.NoError(t, err)
	wager := openTestWager("user-100", time.Now().Add(time.Hour))
	require.NoError(t, wagerRepo.Create(ctx, wager))

	// Escrow against a user with no wallet violates the FK
	orphan := &entities.EscrowRecord{
		UserID:  "nobody",
		WagerID: &wager.ID,
		Amount:  10_000,
		Status:  entities.EscrowStatusHeld,
	}
	assert.Error(t, repo.Create(ctx, orphan))
}

func TestEscrowRepository_GetByChallenge(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	walletRepo := NewWalletRepository(testDB.DB)
	challengeRepo := NewGroupChallengeRepository(testDB.DB)
	repo := NewEscrowRepository(testDB.DB)

	for _, userID := range []string{"user-100", "user-200"} {
		_, err := walletRepo.Create(ctx, userID)
		require.NoError(t, err)
	}

	challenge := &entities.GroupChallenge{
		CreatorID:       "user-100",
		Title:           "weekend pool",
		EntryFee:        10_000,
		TargetAmount:    20_000,
		MinParticipants: 2,
		Status:          entities.GroupChallengeStatusOpen,
		ExpiresAt:       time.Now().Add(time.Hour),
	}
	require.NoError(t, challengeRepo.Create(ctx, challenge))

	for _, userID := range []string{"user-100", "user-200"} {
		record := &entities.EscrowRecord{
			UserID:           userID,
			GroupChallengeID: &challenge.ID,
			Amount:           10_000,
			Status:           entities.EscrowStatusHeld,
		}
		require.NoError(t, repo.Create(ctx, record))
	}

	records, err := repo.GetByChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Ordered by id, so contribution order is stable
	assert.Equal(t, "user-100", records[0].UserID)
	assert.Equal(t, "user-200", records[1].UserID)
}
