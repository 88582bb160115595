package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWager_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    WagerStatus
		to      WagerStatus
		allowed bool
	}{
		{WagerStatusOpen, WagerStatusMatched, true},
		{WagerStatusOpen, WagerStatusCompleted, true},
		{WagerStatusOpen, WagerStatusExpired, true},
		{WagerStatusOpen, WagerStatusCancelled, true},
		{WagerStatusMatched, WagerStatusCompleted, true},
		{WagerStatusMatched, WagerStatusCancelled, true},
		{WagerStatusMatched, WagerStatusOpen, false},
		{WagerStatusMatched, WagerStatusExpired, false},
		{WagerStatusCompleted, WagerStatusOpen, false},
		{WagerStatusCompleted, WagerStatusCancelled, false},
		{WagerStatusExpired, WagerStatusMatched, false},
		{WagerStatusCancelled, WagerStatusOpen, false},
	}
	for _, tt := range tests {
		w := &Wager{Status: tt.from}
		assert.Equal(t, tt.allowed, w.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestWager_IsExpired(t *testing.T) {
	now := time.Now()
	w := &Wager{Status: WagerStatusOpen, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, w.IsExpired(now))

	w.ExpiresAt = now.Add(time.Minute)
	assert.False(t, w.IsExpired(now))

	// Only open wagers expire
	w = &Wager{Status: WagerStatusMatched, ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, w.IsExpired(now))
}

func TestWager_Match(t *testing.T) {
	now := time.Now()
	w := &Wager{Status: WagerStatusOpen}

	w.Match("user-200", now)

	assert.Equal(t, WagerStatusMatched, w.Status)
	require.NotNil(t, w.OpponentID)
	assert.Equal(t, "user-200", *w.OpponentID)
	require.NotNil(t, w.MatchedAt)

	// Matching again is a no-op
	w.Match("user-300", now)
	assert.Equal(t, "user-200", *w.OpponentID)
}

func TestWager_Complete(t *testing.T) {
	now := time.Now()
	winner := "user-100"
	w := &Wager{Status: WagerStatusMatched, Outcome: WagerOutcomeUnset}

	w.Complete(WagerOutcomeWin, &winner, now)

	assert.Equal(t, WagerStatusCompleted, w.Status)
	assert.Equal(t, WagerOutcomeWin, w.Outcome)
	require.NotNil(t, w.WinnerID)
	assert.Equal(t, winner, *w.WinnerID)
	require.NotNil(t, w.ResolvedAt)
}

func TestWager_Complete_TerminalStatesNeverRegress(t *testing.T) {
	now := time.Now()
	winner := "user-100"
	for _, status := range []WagerStatus{WagerStatusCompleted, WagerStatusExpired, WagerStatusCancelled} {
		w := &Wager{Status: status, Outcome: WagerOutcomeUnset}
		w.Complete(WagerOutcomeWin, &winner, now)
		assert.Equal(t, status, w.Status)
		assert.Equal(t, WagerOutcomeUnset, w.Outcome)
	}
}

func TestWager_Counterparty(t *testing.T) {
	opponent := "user-200"
	w := &Wager{CreatorID: "user-100", OpponentID: &opponent}

	assert.Equal(t, "user-200", w.Counterparty("user-100"))
	assert.Equal(t, "user-100", w.Counterparty("user-200"))
	assert.Empty(t, w.Counterparty("user-300"))

	unmatched := &Wager{CreatorID: "user-100"}
	assert.Empty(t, unmatched.Counterparty("user-100"))
}

func TestWager_IsParticipant(t *testing.T) {
	opponent := "user-200"
	w := &Wager{CreatorID: "user-100", OpponentID: &opponent}

	assert.True(t, w.IsParticipant("user-100"))
	assert.True(t, w.IsParticipant("user-200"))
	assert.False(t, w.IsParticipant("user-300"))
}
