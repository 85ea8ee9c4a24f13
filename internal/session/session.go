// Package session is the keyed map of in-flight turns awaiting SQL
// approval. Sessions are single-consumer: Take is an atomic
// read-and-delete, and an eviction sweeper reclaims entries past their
// soft TTL.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultTTL is the soft expiry applied when no custom TTL is given.
const defaultTTL = 20 * time.Minute

// defaultSweepInterval is how often the eviction sweeper scans for
// expired sessions.
const defaultSweepInterval = time.Minute

// Session is the record held between analyze and execute.
type Session struct {
	Utterance string
	Plan      []string
	SQL       string
	CreatedAt time.Time
}

// Clock abstracts time for testability, so expiry can be tested with a
// fake clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// DropNotifier is notified when a session is removed, so any LLM
// conversation memory scoped to it can be dropped too.
type DropNotifier interface {
	DropSession(sessionID string)
}

// Store is an in-memory, TTL-expiring session map. Durability across
// restarts is not required: a dropped session just forces the user to
// re-ask their question.
type Store struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
	clock    Clock
	notifier DropNotifier
	logger   *slog.Logger
}

type entry struct {
	session Session
	expires time.Time
}

// New creates a Store with the default TTL and a real clock.
func New(notifier DropNotifier) *Store {
	return NewWithTTL(notifier, defaultTTL)
}

// NewWithTTL creates a Store with a custom soft-expiry TTL and a real
// clock, for binding to SESSION_TTL_SECONDS.
func NewWithTTL(notifier DropNotifier, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]entry),
		ttl:      ttl,
		clock:    realClock{},
		notifier: notifier,
		logger:   slog.Default(),
	}
}

// NewWithClock creates a Store with a custom clock and TTL, for tests.
func NewWithClock(notifier DropNotifier, clock Clock, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]entry),
		ttl:      ttl,
		clock:    clock,
		notifier: notifier,
		logger:   slog.Default(),
	}
}

// Put stores sess under a fresh opaque id and returns it.
func (s *Store) Put(sess Session) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	sess.CreatedAt = now
	s.sessions[id] = entry{session: sess, expires: now.Add(s.ttl)}
	return id
}

// Take atomically reads and deletes the session keyed by id. ok is
// false if the id is unknown or has expired; an expired read also
// triggers the drop notification.
func (s *Store) Take(id string) (Session, bool) {
	s.mu.Lock()
	e, found := s.sessions[id]
	if found {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !found {
		return Session{}, false
	}
	if s.clock.Now().After(e.expires) {
		s.notify(id)
		return Session{}, false
	}
	s.notify(id)
	return e.session, true
}

func (s *Store) notify(id string) {
	if s.notifier != nil {
		s.notifier.DropSession(id)
	}
}

// Sweep removes every expired session, dropping its conversation
// memory along the way. Run periodically by Run.
func (s *Store) Sweep() {
	now := s.clock.Now()

	s.mu.Lock()
	var expired []string
	for id, e := range s.sessions {
		if now.After(e.expires) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.logger.Debug("session: evicting expired session", "session_id", id)
		s.notify(id)
	}
}

// Run sweeps for expired sessions on a fixed interval until ctx is
// cancelled. Mirrors the poll-loop shape of internal/ingest's Worker.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
