package repository

import (
	"context"
	"testing"

	"sidebet/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing wallet returns nil", func(t *testing.T) {
		wallet, err := repo.GetByUserID(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, wallet)
	})

	t.Run("create starts empty", func(t *testing.T) {
		wallet, err := repo.Create(ctx, "user-100")
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.Equal(t, "user-100", wallet.UserID)
		assert.Zero(t, wallet.AvailableBalance)
		assert.Zero(t, wallet.EscrowBalance)
		assert.False(t, wallet.CreatedAt.IsZero())
	})

	t.Run("get returns stored wallet", func(t *testing.T) {
		wallet, err := repo.GetByUserID(ctx, "user-100")
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.Equal(t, "user-100", wallet.UserID)
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		_, err := repo.Create(ctx, "user-100")
		assert.Error(t, err)
	})
}

func TestWalletRepository_UpdateBalances(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	wallet, err := repo.Create(ctx, "user-200")
	require.NoError(t, err)

	wallet.AvailableBalance = 89_750
	wallet.EscrowBalance = 10_000
	require.NoError(t, repo.UpdateBalances(ctx, wallet))

	reloaded, err := repo.GetByUserID(ctx, "user-200")
	require.NoError(t, err)
	assert.Equal(t, int64(89_750), reloaded.AvailableBalance)
	assert.Equal(t, int64(10_000), reloaded.EscrowBalance)

	t.Run("negative balance rejected by schema", func(t *testing.T) {
		wallet.AvailableBalance = -1
		assert.Error(t, repo.UpdateBalances(ctx, wallet))
	})

	t.Run("unknown wallet rejected", func(t *testing.T) {
		ghost := *wallet
		ghost.UserID = "nobody"
		ghost.AvailableBalance = 0
		assert.Error(t, repo.UpdateBalances(ctx, &ghost))
	})
}

func TestWalletRepository_GetForUpdate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-300")
	require.NoError(t, err)

	// Row locks need an explicit transaction
	tx, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	txRepo := newWalletRepositoryWithTx(tx)
	wallet, err := txRepo.GetForUpdate(ctx, "user-300")
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.Equal(t, "user-300", wallet.UserID)

	missing, err := txRepo.GetForUpdate(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
