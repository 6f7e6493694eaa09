// Package session keeps one contact dialog per browser.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shreyatrivedi/portfolio/internal/contact"
)

// CookieName carries the visitor's session id.
const CookieName = "portfolio_session"

type entry struct {
	controller *contact.Controller
	lastSeen   time.Time
}

// Store maps session ids to contact controllers. Entries live in memory only
// and expire after ttl without use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	factory func() *contact.Controller
	now     func() time.Time
}

// NewStore returns a store that builds controllers with factory.
func NewStore(ttl time.Duration, factory func() *contact.Controller) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
}

// Get returns the controller for id, creating a fresh session when id is
// empty, malformed, unknown or expired. The returned id is the one to hand
// back to the browser.
func (s *Store) Get(id string) (*contact.Controller, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, err := uuid.Parse(id); err == nil {
		if e, ok := s.entries[id]; ok && now.Sub(e.lastSeen) < s.ttl {
			e.lastSeen = now
			return e.controller, id
		}
	}

	id = uuid.NewString()
	c := s.factory()
	s.entries[id] = &entry{controller: c, lastSeen: now}
	return c, id
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops idle sessions and returns how many it removed. Sessions with a
// submission in flight are kept.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) >= s.ttl && e.controller.State() != contact.Submitting {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
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
