package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/cart"
)

// Store keeps sessions in memory, keyed by the id held in the client cookie.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	policy   cart.MergePolicy
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(policy cart.MergePolicy, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		policy:   policy,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for id, creating a fresh one when id is empty,
// malformed or unknown. The bool reports whether a new session was made.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if _, err := uuid.Parse(id); err == nil {
		if s, ok := st.sessions[id]; ok {
			s.touch(now)
			return s, false
		}
	}

	s := newSession(uuid.NewString(), st.policy, now)
	st.sessions[s.ID] = s
	return s, true
}

// Lookup returns an existing session without creating one.
func (st *Store) Lookup(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Prune drops sessions idle for longer than the TTL. Sessions with a
// submission in flight are kept.
func (st *Store) Prune() int {
	if st.ttl <= 0 {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) <= st.ttl || s.Submitting() {
			continue
		}
		delete(st.sessions, id)
		removed++
	}
	if removed > 0 {
		log.Printf("[SESSION] [INFO] pruned %d idle sessions, %d remaining", removed, len(st.sessions))
	}
	return removed
}
