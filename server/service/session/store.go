package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the idle duration after which a session expires.
const DefaultTTL = time.Hour

// Store is the in-memory session store. Expired entries are evicted
// lazily on read and opportunistically on create; no background sweep is
// required for correctness. Reads and writes exchange deep copies, so a
// reader never observes a half-applied update.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	locks sync.Map // session id -> *sync.Mutex

	maxDiagnosticTurns int
	now                func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides the idle expiry duration.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// WithMaxDiagnosticTurns sets the diagnostic turn budget of new sessions.
func WithMaxDiagnosticTurns(n int) StoreOption {
	return func(s *Store) { s.maxDiagnosticTurns = n }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions:           make(map[string]*Session),
		ttl:                DefaultTTL,
		maxDiagnosticTurns: 8,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates a new session at the initial step.
func (s *Store) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:                 uuid.NewString(),
		CurrentStep:        StepVehicleID,
		MaxDiagnosticTurns: s.maxDiagnosticTurns,
		BookingData:        make(map[string]string),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess.Clone()
	s.cleanupExpiredLocked()
	s.mu.Unlock()

	return sess
}

// Get returns a copy of the session, or nil when absent or idle-expired.
// Expired entries are evicted on read.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if s.isExpiredLocked(sess) {
		delete(s.sessions, id)
		s.locks.Delete(id)
		return nil
	}
	return sess.Clone()
}

// Update persists the session and refreshes its last-updated timestamp.
func (s *Store) Update(sess *Session) {
	sess.UpdatedAt = s.now()

	s.mu.Lock()
	s.sessions[sess.ID] = sess.Clone()
	s.mu.Unlock()
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.locks.Delete(id)
}

// Lock serializes turn processing per session id: two turns referencing
// the same session must not run concurrently, while turns for distinct
// sessions proceed in parallel. The returned func releases the lock.
func (s *Store) Lock(id string) func() {
	muAny, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Len reports the number of live (possibly expired, not yet evicted)
// sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) isExpiredLocked(sess *Session) bool {
	return s.now().Sub(sess.UpdatedAt) > s.ttl
}

func (s *Store) cleanupExpiredLocked() {
	for id, sess := range s.sessions {
		if s.isExpiredLocked(sess) {
			delete(s.sessions, id)
			s.locks.Delete(id)
		}
	}
}
