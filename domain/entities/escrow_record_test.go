package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrowRecord_Release_Idempotent(t *testing.T) {
	now := time.Now()
	record := &EscrowRecord{Status: EscrowStatusHeld}

	record.Release(now)
	assert.Equal(t, EscrowStatusReleased, record.Status)
	require.NotNil(t, record.ReleasedAt)
	first := *record.ReleasedAt

	record.Release(now.Add(time.Hour))
	assert.Equal(t, first, *record.ReleasedAt)
}

func TestEscrowRecord_Dispute(t *testing.T) {
	record := &EscrowRecord{Status: EscrowStatusHeld}
	assert.True(t, record.Dispute())
	assert.Equal(t, EscrowStatusDisputed, record.Status)

	// Released records are beyond dispute
	released := &EscrowRecord{Status: EscrowStatusReleased}
	assert.False(t, released.Dispute())
	assert.Equal(t, EscrowStatusReleased, released.Status)

	// Disputing twice fails
	assert.False(t, record.Dispute())
}

func TestEscrowRecord_DisputedIsNotReleasable(t *testing.T) {
	now := time.Now()
	record := &EscrowRecord{Status: EscrowStatusDisputed}

	record.Release(now)

	assert.Equal(t, EscrowStatusDisputed, record.Status)
	assert.Nil(t, record.ReleasedAt)
}
