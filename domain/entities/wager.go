package entities

import (
	"time"
)

// WagerStatus represents the lifecycle state of a wager
type WagerStatus string

const (
	WagerStatusOpen      WagerStatus = "open"
	WagerStatusMatched   WagerStatus = "matched"
	WagerStatusCompleted WagerStatus = "completed"
	WagerStatusExpired   WagerStatus = "expired"
	WagerStatusCancelled WagerStatus = "cancelled"
)

// WagerOutcome represents the result of a completed wager.
// Outcome is unset until the wager reaches the completed state.
type WagerOutcome string

const (
	WagerOutcomeUnset WagerOutcome = "unset"
	WagerOutcomeWin   WagerOutcome = "win"
	WagerOutcomeLoss  WagerOutcome = "loss"
	WagerOutcomePush  WagerOutcome = "push"
)

// Wager represents a peer-to-peer bet between a creator and, once matched,
// an opponent. Stake is in integer cents; odds use the American convention
// (positive = underdog multiplier, negative = favorite divisor).
type Wager struct {
	ID         int64        `db:"id"`
	CreatorID  string       `db:"creator_id"`
	OpponentID *string      `db:"opponent_id"`
	Stake      int64        `db:"stake"`
	Selection  string       `db:"selection"`
	Odds       int          `db:"odds"`
	VigPercent float64      `db:"vig_percent"` // creator-configurable, advisory only
	Status     WagerStatus  `db:"status"`
	Outcome    WagerOutcome `db:"outcome"`
	WinnerID   *string      `db:"winner_id"`
	ExpiresAt  time.Time    `db:"expires_at"`
	CreatedAt  time.Time    `db:"created_at"`
	MatchedAt  *time.Time   `db:"matched_at"`
	ResolvedAt *time.Time   `db:"resolved_at"`
}

// IsOpen checks if the wager is open for matching
func (w *Wager) IsOpen() bool {
	return w.Status == WagerStatusOpen
}

// IsMatched checks if the wager has been matched by an opponent
func (w *Wager) IsMatched() bool {
	return w.Status == WagerStatusMatched
}

// IsTerminal checks if the wager is in a terminal state
func (w *Wager) IsTerminal() bool {
	return w.Status == WagerStatusCompleted ||
		w.Status == WagerStatusExpired ||
		w.Status == WagerStatusCancelled
}

// IsResolvable checks if the wager may still be settled
func (w *Wager) IsResolvable() bool {
	return w.Status == WagerStatusOpen || w.Status == WagerStatusMatched
}

// IsExpired checks if the wager is open past its expiry timestamp
func (w *Wager) IsExpired(now time.Time) bool {
	return w.Status == WagerStatusOpen && now.After(w.ExpiresAt)
}

// IsParticipant checks if the given user is the creator or the opponent
func (w *Wager) IsParticipant(userID string) bool {
	if w.CreatorID == userID {
		return true
	}
	return w.OpponentID != nil && *w.OpponentID == userID
}

// Counterparty returns the other participant, or empty string if the user
// is not a participant or the wager is unmatched
func (w *Wager) Counterparty(userID string) string {
	if w.OpponentID == nil {
		return ""
	}
	switch userID {
	case w.CreatorID:
		return *w.OpponentID
	case *w.OpponentID:
		return w.CreatorID
	}
	return ""
}

// CanTransitionTo reports whether moving to the target status is a legal
// transition. Transitions are monotonic: terminal states never regress.
func (w *Wager) CanTransitionTo(target WagerStatus) bool {
	switch w.Status {
	case WagerStatusOpen:
		return target == WagerStatusMatched ||
			target == WagerStatusCompleted ||
			target == WagerStatusExpired ||
			target == WagerStatusCancelled
	case WagerStatusMatched:
		return target == WagerStatusCompleted || target == WagerStatusCancelled
	}
	return false
}

// Match transitions the wager to matched with the given opponent
func (w *Wager) Match(opponentID string, now time.Time) {
	if w.Status == WagerStatusOpen {
		w.Status = WagerStatusMatched
		w.OpponentID = &opponentID
		w.MatchedAt = &now
	}
}

// Complete transitions the wager to completed with its outcome.
// WinnerID stays nil on a push.
func (w *Wager) Complete(outcome WagerOutcome, winnerID *string, now time.Time) {
	if w.IsResolvable() {
		w.Status = WagerStatusCompleted
		w.Outcome = outcome
		w.WinnerID = winnerID
		w.ResolvedAt = &now
	}
}
