package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoom() *Room {
	return &Room{
		BettingSeconds:    60,
		LockBufferSeconds: 5,
		RevealSeconds:     10,
	}
}

func TestRoundTimers(t *testing.T) {
	room := testRoom()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	round := &Round{Phase: PhaseBetting, StartedAt: start}

	assert.Equal(t, start.Add(55*time.Second), round.LockAt(room))
	assert.Equal(t, start.Add(60*time.Second), round.BettingEndsAt(room))

	t.Run("reveal end requires a reveal start", func(t *testing.T) {
		assert.True(t, round.RevealEndsAt(room).IsZero())

		revealAt := start.Add(60 * time.Second)
		round.RevealStartedAt = &revealAt
		assert.Equal(t, revealAt.Add(10*time.Second), round.RevealEndsAt(room))
	})
}

func TestRoundAcceptsBetsAt(t *testing.T) {
	room := testRoom()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	round := &Round{Phase: PhaseBetting, StartedAt: start}

	assert.True(t, round.AcceptsBetsAt(room, start))
	assert.True(t, round.AcceptsBetsAt(room, start.Add(54*time.Second)))

	t.Run("closed exactly at the lock boundary", func(t *testing.T) {
		assert.False(t, round.AcceptsBetsAt(room, start.Add(55*time.Second)))
		assert.False(t, round.AcceptsBetsAt(room, start.Add(56*time.Second)))
	})

	t.Run("closed once past the betting phase", func(t *testing.T) {
		revealing := &Round{Phase: PhaseRevealing, StartedAt: start}
		assert.False(t, revealing.AcceptsBetsAt(room, start))
	})
}

func TestDayOf(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	// 23:30 UTC is already past midnight in Shanghai
	at := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02", DayOf(at, loc))
	assert.Equal(t, "2026-03-01", DayOf(at, time.UTC))
}

func TestPartitionValid(t *testing.T) {
	assert.True(t, PartitionWallet.Valid())
	assert.True(t, PartitionBank.Valid())
	assert.False(t, Partition("vault").Valid())
}

func TestUserBalanceOf(t *testing.T) {
	u := &User{Wallet: 100, Bank: 250}
	assert.Equal(t, int64(100), u.BalanceOf(PartitionWallet))
	assert.Equal(t, int64(250), u.BalanceOf(PartitionBank))
}
