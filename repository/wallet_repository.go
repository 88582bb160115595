package repository

import (
	"context"
	"fmt"

	"sidebet/database"
	"sidebet/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WalletRepository implements wallet data access
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

const walletColumns = `
	user_id, available_balance, escrow_balance,
	daily_payout_limit, weekly_payout_limit, created_at, updated_at
`

func scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := row.Scan(
		&wallet.UserID,
		&wallet.AvailableBalance,
		&wallet.EscrowBalance,
		&wallet.DailyPayoutLimit,
		&wallet.WeeklyPayoutLimit,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetByUserID retrieves a wallet, or nil if the user has none yet
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// GetForUpdate retrieves a wallet and locks its row for the duration of the
// enclosing transaction
func (r *WalletRepository) GetForUpdate(ctx context.Context, userID string) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// Create creates an empty wallet for the user
func (r *WalletRepository) Create(ctx context.Context, userID string) (*entities.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		RETURNING ` + walletColumns

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// UpdateBalances persists the wallet's available and escrow balances
func (r *WalletRepository) UpdateBalances(ctx context.Context, wallet *entities.Wallet) error {
	query := `
		UPDATE wallets
		SET available_balance = $2,
		    escrow_balance = $3,
		    updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.q.Exec(ctx, query, wallet.UserID, wallet.AvailableBalance, wallet.EscrowBalance)
	if err != nil {
		return fmt.Errorf("failed to update wallet for user %s: %w", wallet.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found for user %s", wallet.UserID)
	}
	return nil
}
