// Package session keeps the per-conversation state of the chat menus.
package session

import (
	"time"

	"financas/internal/cache"
	"financas/internal/core"
)

// State is where a conversation stands in the menu flow.
type State int

const (
	Idle State = iota
	AwaitingPeriodFilter
	AwaitingCategoryFilter
	AwaitingResetPolicy
	AdminManaging
)

func (s State) String() string {
	switch s {
	case AwaitingPeriodFilter:
		return "awaiting_period_filter"
	case AwaitingCategoryFilter:
		return "awaiting_category_filter"
	case AwaitingResetPolicy:
		return "awaiting_reset_policy"
	case AdminManaging:
		return "admin_managing"
	default:
		return "idle"
	}
}

// Session is the state of one conversation. Target is set only in
// AdminManaging.
type Session struct {
	State  State
	Target core.User
}

func (s Session) IsIdle() bool {
	return s.State == Idle
}

// Store holds sessions keyed by chat ID. Sessions left untouched for the TTL
// fall back to Idle.
type Store struct {
	cache *cache.LRUCache[int64, Session]
}

const defaultCapacity = 10000

// NewStore keeps at most capacity chats, evicting the least recently used.
// A capacity below 1 uses the default.
func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Store{cache: cache.NewLRUCache[int64, Session](capacity, ttl)}
}

// Get returns the chat's session, Idle when none is stored.
func (s *Store) Get(chatID int64) Session {
	sess, ok := s.cache.Get(chatID)
	if !ok {
		return Session{State: Idle}
	}
	return sess
}

// Set stores sess for the chat. Storing Idle forgets the chat.
func (s *Store) Set(chatID int64, sess Session) {
	if sess.IsIdle() {
		s.cache.Delete(chatID)
		return
	}
	s.cache.Set(chatID, sess)
}

func (s *Store) Reset(chatID int64) {
	s.cache.Delete(chatID)
}

// Cache exposes the backing cache so it can be registered for sweeping.
func (s *Store) Cache() *cache.LRUCache[int64, Session] {
	return s.cache
}
