package repository

import (
	"context"
	"fmt"

	"sidebet/database"
	"sidebet/domain/entities"

	"github.com/jackc/pgx/v5"
)

// EscrowRepository implements escrow record data access
type EscrowRepository struct {
	q Queryable
}

// NewEscrowRepository creates a new escrow repository
func NewEscrowRepository(db *database.DB) *EscrowRepository {
	return &EscrowRepository{q: db.Pool}
}

// newEscrowRepositoryWithTx creates a new escrow repository with a transaction
func newEscrowRepositoryWithTx(tx Queryable) *EscrowRepository {
	return &EscrowRepository{q: tx}
}

const escrowColumns = `
	id, user_id, wager_id, group_challenge_id, amount, status, created_at, released_at
`

func scanEscrowRecord(row pgx.Row) (*entities.EscrowRecord, error) {
	var record entities.EscrowRecord
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.WagerID,
		&record.GroupChallengeID,
		&record.Amount,
		&record.Status,
		&record.CreatedAt,
		&record.ReleasedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func scanEscrowRecords(rows pgx.Rows) ([]*entities.EscrowRecord, error) {
	defer rows.Close()

	var records []*entities.EscrowRecord
	for rows.Next() {
		record, err := scanEscrowRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Create creates a new held escrow record
func (r *EscrowRepository) Create(ctx context.Context, record *entities.EscrowRecord) error {
	query := `
		INSERT INTO escrow_records (user_id, wager_id, group_challenge_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.UserID,
		record.WagerID,
		record.GroupChallengeID,
		record.Amount,
		record.Status,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create escrow record: %w", err)
	}
	return nil
}

// GetByID retrieves an escrow record, or nil if absent
func (r *EscrowRepository) GetByID(ctx context.Context, id int64) (*entities.EscrowRecord, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrow_records WHERE id = $1`

	record, err := scanEscrowRecord(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow record %d: %w", id, err)
	}
	return record, nil
}

// GetByWager returns all escrow records held against a wager
func (r *EscrowRepository) GetByWager(ctx context.Context, wagerID int64) ([]*entities.EscrowRecord, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrow_records WHERE wager_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow records for wager %d: %w", wagerID, err)
	}

	records, err := scanEscrowRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan escrow records: %w", err)
	}
	return records, nil
}

// GetByChallenge returns all escrow records held against a group challenge
func (r *EscrowRepository) GetByChallenge(ctx context.Context, challengeID int64) ([]*entities.EscrowRecord, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrow_records WHERE group_challenge_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow records for challenge %d: %w", challengeID, err)
	}

	records, err := scanEscrowRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan escrow records: %w", err)
	}
	return records, nil
}

// Release transitions a record to released. Releasing an already-released
// record is a no-op, not an error, so settlement retries stay idempotent.
func (r *EscrowRepository) Release(ctx context.Context, id int64) error {
	query := `
		UPDATE escrow_records
		SET status = 'released', released_at = NOW()
		WHERE id = $1 AND status = 'held'
	`

	if _, err := r.q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to release escrow record %d: %w", id, err)
	}
	return nil
}

// Dispute transitions a held record to disputed. Returns false if the record
// was not in the held state.
func (r *EscrowRepository) Dispute(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE escrow_records
		SET status = 'disputed'
		WHERE id = $1 AND status = 'held'
	`

	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to dispute escrow record %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
