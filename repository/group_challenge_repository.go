package repository

import (
	"context"
	"fmt"
	"time"

	"sidebet/database"
	"sidebet/domain/entities"

	"github.com/jackc/pgx/v5"
)

// GroupChallengeRepository implements group challenge data access
type GroupChallengeRepository struct {
	q Queryable
}

// NewGroupChallengeRepository creates a new group challenge repository
func NewGroupChallengeRepository(db *database.DB) *GroupChallengeRepository {
	return &GroupChallengeRepository{q: db.Pool}
}

// newGroupChallengeRepositoryWithTx creates a new group challenge repository with a transaction
func newGroupChallengeRepositoryWithTx(tx Queryable) *GroupChallengeRepository {
	return &GroupChallengeRepository{q: tx}
}

const groupChallengeColumns = `
	id, creator_id, title, description, entry_fee, target_amount, current_amount,
	min_participants, max_participants, status, winner_id, expires_at, created_at, resolved_at
`

func scanGroupChallenge(row pgx.Row) (*entities.GroupChallenge, error) {
	var challenge entities.GroupChallenge
	err := row.Scan(
		&challenge.ID,
		&challenge.CreatorID,
		&challenge.Title,
		&challenge.Description,
		&challenge.EntryFee,
		&challenge.TargetAmount,
		&challenge.CurrentAmount,
		&challenge.MinParticipants,
		&challenge.MaxParticipants,
		&challenge.Status,
		&challenge.WinnerID,
		&challenge.ExpiresAt,
		&challenge.CreatedAt,
		&challenge.ResolvedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// Create creates a new group challenge
func (r *GroupChallengeRepository) Create(ctx context.Context, challenge *entities.GroupChallenge) error {
	query := `
		INSERT INTO group_challenges (
			creator_id, title, description, entry_fee, target_amount, current_amount,
			min_participants, max_participants, status, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		challenge.CreatorID,
		challenge.Title,
		challenge.Description,
		challenge.EntryFee,
		challenge.TargetAmount,
		challenge.CurrentAmount,
		challenge.MinParticipants,
		challenge.MaxParticipants,
		challenge.Status,
		challenge.ExpiresAt,
	).Scan(&challenge.ID, &challenge.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create group challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by its ID, or nil if absent
func (r *GroupChallengeRepository) GetByID(ctx context.Context, id int64) (*entities.GroupChallenge, error) {
	query := `SELECT ` + groupChallengeColumns + ` FROM group_challenges WHERE id = $1`

	challenge, err := scanGroupChallenge(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get group challenge %d: %w", id, err)
	}
	return challenge, nil
}

// GetForUpdate retrieves a challenge and locks its row for the duration of
// the enclosing transaction
func (r *GroupChallengeRepository) GetForUpdate(ctx context.Context, id int64) (*entities.GroupChallenge, error) {
	query := `SELECT ` + groupChallengeColumns + ` FROM group_challenges WHERE id = $1 FOR UPDATE`

	challenge, err := scanGroupChallenge(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock group challenge %d: %w", id, err)
	}
	return challenge, nil
}

// Update updates a challenge's state and collected amount
func (r *GroupChallengeRepository) Update(ctx context.Context, challenge *entities.GroupChallenge) error {
	query := `
		UPDATE group_challenges
		SET current_amount = $2,
		    status = $3,
		    winner_id = $4,
		    resolved_at = $5
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		challenge.ID,
		challenge.CurrentAmount,
		challenge.Status,
		challenge.WinnerID,
		challenge.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update group challenge %d: %w", challenge.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("group challenge %d not found", challenge.ID)
	}
	return nil
}

// HasContribution reports whether the user already contributed. Contributions
// are tracked as escrow records, one per participant.
func (r *GroupChallengeRepository) HasContribution(ctx context.Context, challengeID int64, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM escrow_records
			WHERE group_challenge_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, challengeID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check contribution: %w", err)
	}
	return exists, nil
}

// GetExpired returns open challenges whose expiry has passed
func (r *GroupChallengeRepository) GetExpired(ctx context.Context, now time.Time, limit int) ([]*entities.GroupChallenge, error) {
	query := `
		SELECT ` + groupChallengeColumns + `
		FROM group_challenges
		WHERE status = 'open' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*entities.GroupChallenge
	for rows.Next() {
		challenge, err := scanGroupChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group challenge: %w", err)
		}
		challenges = append(challenges, challenge)
	}
	return challenges, rows.Err()
}
