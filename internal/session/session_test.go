package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"financas/internal/core"
)

func TestStoreDefaultsToIdle(t *testing.T) {
	s := NewStore(0, time.Minute)
	assert.Equal(t, Session{State: Idle}, s.Get(1))
}

func TestStoreTransitions(t *testing.T) {
	s := NewStore(0, time.Minute)

	s.Set(1, Session{State: AwaitingPeriodFilter})
	assert.Equal(t, AwaitingPeriodFilter, s.Get(1).State)
	assert.Equal(t, Idle, s.Get(2).State, "sessions are per chat")

	target := core.User{ID: 9, Name: "Ana"}
	s.Set(1, Session{State: AdminManaging, Target: target})
	assert.Equal(t, target, s.Get(1).Target)

	s.Set(1, Session{State: Idle})
	assert.Zero(t, s.Cache().Size())
}

func TestStoreExpires(t *testing.T) {
	s := NewStore(0, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Cache().SetClock(func() time.Time { return now })

	s.Set(1, Session{State: AwaitingResetPolicy})
	now = now.Add(2 * time.Minute)
	assert.True(t, s.Get(1).IsIdle())
}

func TestReset(t *testing.T) {
	s := NewStore(0, time.Minute)
	s.Set(1, Session{State: AwaitingCategoryFilter})
	s.Reset(1)
	assert.True(t, s.Get(1).IsIdle())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "admin_managing", AdminManaging.String())
	assert.Equal(t, "awaiting_reset_policy", AwaitingResetPolicy.String())
}

func TestStoreCapacity(t *testing.T) {
	s := NewStore(2, time.Minute)
	s.Set(1, Session{State: AwaitingPeriodFilter})
	s.Set(2, Session{State: AwaitingPeriodFilter})
	s.Set(3, Session{State: AwaitingPeriodFilter})

	assert.Equal(t, 2, s.Cache().Size())
	assert.True(t, s.Get(1).IsIdle(), "least recently used chat is evicted")
	assert.Equal(t, AwaitingPeriodFilter, s.Get(3).State)
}
