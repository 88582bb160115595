package entities

import (
	"time"
)

// GroupChallengeStatus represents the lifecycle state of a group challenge
type GroupChallengeStatus string

const (
	GroupChallengeStatusOpen      GroupChallengeStatus = "open"
	GroupChallengeStatusFunded    GroupChallengeStatus = "funded"
	GroupChallengeStatusCompleted GroupChallengeStatus = "completed"
	GroupChallengeStatusExpired   GroupChallengeStatus = "expired"
)

// GroupChallenge represents a pooled wager funded by per-participant entry
// fees. Each contribution is held in its own escrow record; the challenge
// transitions to funded once the pot reaches the target or the participant
// cap is hit.
type GroupChallenge struct {
	ID              int64                `db:"id"`
	CreatorID       string               `db:"creator_id"`
	Title           string               `db:"title"`
	Description     string               `db:"description"`
	EntryFee        int64                `db:"entry_fee"`
	TargetAmount    int64                `db:"target_amount"`
	CurrentAmount   int64                `db:"current_amount"`
	MinParticipants int                  `db:"min_participants"`
	MaxParticipants int                  `db:"max_participants"`
	Status          GroupChallengeStatus `db:"status"`
	WinnerID        *string              `db:"winner_id"`
	ExpiresAt       time.Time            `db:"expires_at"`
	CreatedAt       time.Time            `db:"created_at"`
	ResolvedAt      *time.Time           `db:"resolved_at"`
}

// IsOpen checks if the challenge still accepts contributions
func (gc *GroupChallenge) IsOpen() bool {
	return gc.Status == GroupChallengeStatusOpen
}

// IsFunded checks if the challenge is fully funded and awaiting resolution
func (gc *GroupChallenge) IsFunded() bool {
	return gc.Status == GroupChallengeStatusFunded
}

// IsExpired checks if the challenge is open past its expiry timestamp
func (gc *GroupChallenge) IsExpired(now time.Time) bool {
	return gc.Status == GroupChallengeStatusOpen && now.After(gc.ExpiresAt)
}

// ParticipantCount derives the participant count from the collected amount.
// Contributions are always exactly one entry fee.
func (gc *GroupChallenge) ParticipantCount() int {
	if gc.EntryFee == 0 {
		return 0
	}
	return int(gc.CurrentAmount / gc.EntryFee)
}

// IsFull checks if the participant cap has been reached
func (gc *GroupChallenge) IsFull() bool {
	return gc.MaxParticipants > 0 && gc.ParticipantCount() >= gc.MaxParticipants
}

// TargetReached checks if adding one more entry fee meets or exceeds the target
func (gc *GroupChallenge) TargetReached() bool {
	return gc.CurrentAmount >= gc.TargetAmount
}

// Contribute records one participant's entry fee against the pot
func (gc *GroupChallenge) Contribute() {
	gc.CurrentAmount += gc.EntryFee
}

// ShouldFund reports whether the challenge should transition to funded
func (gc *GroupChallenge) ShouldFund() bool {
	return gc.TargetReached() || gc.IsFull()
}

// Fund transitions the challenge to funded
func (gc *GroupChallenge) Fund() {
	if gc.Status == GroupChallengeStatusOpen {
		gc.Status = GroupChallengeStatusFunded
	}
}

// Complete transitions the challenge to completed with a winner
func (gc *GroupChallenge) Complete(winnerID string, now time.Time) {
	if gc.Status == GroupChallengeStatusFunded || gc.Status == GroupChallengeStatusOpen {
		gc.Status = GroupChallengeStatusCompleted
		gc.WinnerID = &winnerID
		gc.ResolvedAt = &now
	}
}

// Expire transitions the challenge to expired
func (gc *GroupChallenge) Expire() {
	if gc.Status == GroupChallengeStatusOpen {
		gc.Status = GroupChallengeStatusExpired
	}
}
