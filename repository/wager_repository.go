package repository

import (
	"context"
	"fmt"
	"time"

	"sidebet/database"
	"sidebet/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WagerRepository implements wager data access
type WagerRepository struct {
	q Queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx Queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

const wagerColumns = `
	id, creator_id, opponent_id, stake, selection, odds, vig_percent,
	status, outcome, winner_id, expires_at, created_at, matched_at, resolved_at
`

func scanWager(row pgx.Row) (*entities.Wager, error) {
	var wager entities.Wager
	err := row.Scan(
		&wager.ID,
		&wager.CreatorID,
		&wager.OpponentID,
		&wager.Stake,
		&wager.Selection,
		&wager.Odds,
		&wager.VigPercent,
		&wager.Status,
		&wager.Outcome,
		&wager.WinnerID,
		&wager.ExpiresAt,
		&wager.CreatedAt,
		&wager.MatchedAt,
		&wager.ResolvedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

func scanWagers(rows pgx.Rows) ([]*entities.Wager, error) {
	defer rows.Close()

	var wagers []*entities.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		wagers = append(wagers, wager)
	}
	return wagers, rows.Err()
}

// Create creates a new wager
func (r *WagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	query := `
		INSERT INTO wagers (
			creator_id, opponent_id, stake, selection, odds, vig_percent,
			status, outcome, winner_id, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.CreatorID,
		wager.OpponentID,
		wager.Stake,
		wager.Selection,
		wager.Odds,
		wager.VigPercent,
		wager.Status,
		wager.Outcome,
		wager.WinnerID,
		wager.ExpiresAt,
	).Scan(&wager.ID, &wager.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create wager: %w", err)
	}
	return nil
}

// GetByID retrieves a wager by its ID, or nil if absent
func (r *WagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1`

	wager, err := scanWager(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get wager by ID %d: %w", id, err)
	}
	return wager, nil
}

// Update updates a wager's state and related fields
func (r *WagerRepository) Update(ctx context.Context, wager *entities.Wager) error {
	query := `
		UPDATE wagers
		SET opponent_id = $2,
		    status = $3,
		    outcome = $4,
		    winner_id = $5,
		    matched_at = $6,
		    resolved_at = $7
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		wager.ID,
		wager.OpponentID,
		wager.Status,
		wager.Outcome,
		wager.WinnerID,
		wager.MatchedAt,
		wager.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update wager %d: %w", wager.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wager %d not found", wager.ID)
	}
	return nil
}

// UpdateStatusGuarded persists the wager only if its row is currently in one
// of the allowed statuses. Returns false when the guard fails, which is how
// concurrent settlement attempts lose the race.
func (r *WagerRepository) UpdateStatusGuarded(ctx context.Context, wager *entities.Wager, allowed []entities.WagerStatus) (bool, error) {
	query := `
		UPDATE wagers
		SET opponent_id = $2,
		    status = $3,
		    outcome = $4,
		    winner_id = $5,
		    matched_at = $6,
		    resolved_at = $7
		WHERE id = $1 AND status = ANY($8)
	`

	statuses := make([]string, len(allowed))
	for i, s := range allowed {
		statuses[i] = string(s)
	}

	tag, err := r.q.Exec(ctx, query,
		wager.ID,
		wager.OpponentID,
		wager.Status,
		wager.Outcome,
		wager.WinnerID,
		wager.MatchedAt,
		wager.ResolvedAt,
		statuses,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update wager %d: %w", wager.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetActiveByUser returns open and matched wagers the user participates in
func (r *WagerRepository) GetActiveByUser(ctx context.Context, userID string) ([]*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE (creator_id = $1 OR opponent_id = $1)
		  AND status IN ('open', 'matched')
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active wagers for user %s: %w", userID, err)
	}

	wagers, err := scanWagers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan active wagers: %w", err)
	}
	return wagers, nil
}

// GetExpired returns open wagers whose expiry has passed
func (r *WagerRepository) GetExpired(ctx context.Context, now time.Time, limit int) ([]*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE status = 'open' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired wagers: %w", err)
	}

	wagers, err := scanWagers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expired wagers: %w", err)
	}
	return wagers, nil
}

// GetResolvable returns wagers still eligible for settlement
func (r *WagerRepository) GetResolvable(ctx context.Context, limit int) ([]*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE status IN ('open', 'matched')
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolvable wagers: %w", err)
	}

	wagers, err := scanWagers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan resolvable wagers: %w", err)
	}
	return wagers, nil
}
