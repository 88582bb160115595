package entities

import (
	"time"
)

// EscrowStatus represents the state of an escrow record
type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "held"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusDisputed EscrowStatus = "disputed"
)

// EscrowRecord tracks funds held out of a user's available balance against
// exactly one wager, or one participant's contribution to a group challenge.
type EscrowRecord struct {
	ID               int64        `db:"id"`
	UserID           string       `db:"user_id"`
	WagerID          *int64       `db:"wager_id"`
	GroupChallengeID *int64       `db:"group_challenge_id"`
	Amount           int64        `db:"amount"`
	Status           EscrowStatus `db:"status"`
	CreatedAt        time.Time    `db:"created_at"`
	ReleasedAt       *time.Time   `db:"released_at"`
}

// IsHeld checks if the funds are still held
func (e *EscrowRecord) IsHeld() bool {
	return e.Status == EscrowStatusHeld
}

// IsReleased checks if the record has been released
func (e *EscrowRecord) IsReleased() bool {
	return e.Status == EscrowStatusReleased
}

// IsDisputed checks if the record is under dispute. Disputed records are
// excluded from automatic settlement.
func (e *EscrowRecord) IsDisputed() bool {
	return e.Status == EscrowStatusDisputed
}

// Release transitions the record to released. Releasing an already-released
// record is a no-op so settlement retries stay idempotent.
func (e *EscrowRecord) Release(now time.Time) {
	if e.Status == EscrowStatusHeld {
		e.Status = EscrowStatusReleased
		e.ReleasedAt = &now
	}
}

// Dispute transitions a held record to disputed
func (e *EscrowRecord) Dispute() bool {
	if e.Status != EscrowStatusHeld {
		return false
	}
	e.Status = EscrowStatusDisputed
	return true
}
