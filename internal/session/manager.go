package session

import (
	"context"
	"log"
	"sync"
	"time"

	"solardash/domain/core"
	"solardash/domain/dataset"
)

// Defaults supplies the dataset and selection new sessions start with
type Defaults func() (*dataset.Dataset, dataset.Selection)

// Manager keeps sessions in memory and expires idle ones
type Manager struct {
	sessions   map[core.SessionID]Session
	sessionsMu sync.RWMutex
	ttl        time.Duration
	defaults   Defaults
	now        func() time.Time
}

// NewManager creates a manager. ttl <= 0 disables expiry.
func NewManager(ttl time.Duration, defaults Defaults) *Manager {
	return &Manager{
		sessions: make(map[core.SessionID]Session),
		ttl:      ttl,
		defaults: defaults,
		now:      time.Now,
	}
}

// TTL returns the idle timeout
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create registers a new session for ds
func (m *Manager) Create(ds *dataset.Dataset, sel dataset.Selection) Session {
	now := m.now()
	s := Session{
		ID:        core.NewSessionID(),
		Dataset:   ds,
		Selection: sel,
		CreatedAt: now,
		LastSeen:  now,
	}

	m.sessionsMu.Lock()
	m.sessions[s.ID] = s
	total := len(m.sessions)
	m.sessionsMu.Unlock()

	log.Printf("[Session] Created %s (active sessions: %d)", s.ID, total)
	return s
}

// CreateDefault registers a session seeded from the defaults
func (m *Manager) CreateDefault() Session {
	var (
		ds  *dataset.Dataset
		sel dataset.Selection
	)
	if m.defaults != nil {
		ds, sel = m.defaults()
	}
	return m.Create(ds, sel)
}

// Get returns the session and marks it as seen. Unknown and expired sessions
// yield core.ErrSessionNotFound.
func (m *Manager) Get(id core.SessionID) (Session, error) {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, core.ErrSessionNotFound
	}
	now := m.now()
	if m.expired(s, now) {
		delete(m.sessions, id)
		return Session{}, core.ErrSessionNotFound
	}
	s.LastSeen = now
	m.sessions[id] = s
	return s, nil
}

// Resolve returns the session for a raw id, creating a default session when
// the id is malformed, unknown or expired. created reports the latter.
func (m *Manager) Resolve(rawID string) (s Session, created bool) {
	if id, err := core.ParseSessionID(rawID); err == nil {
		if s, err := m.Get(id); err == nil {
			return s, false
		}
	}
	return m.CreateDefault(), true
}

// Update applies fn to the stored session atomically. fn receives a copy and
// returns the replacement; an error leaves the session unchanged.
func (m *Manager) Update(id core.SessionID, fn func(Session) (Session, error)) (Session, error) {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s, m.now()) {
		return Session{}, core.ErrSessionNotFound
	}
	next, err := fn(s)
	if err != nil {
		return s, err
	}
	next.ID = s.ID
	next.CreatedAt = s.CreatedAt
	next.LastSeen = m.now()
	m.sessions[id] = next
	return next, nil
}

// SetSelection stores a new selection for the session
func (m *Manager) SetSelection(id core.SessionID, sel dataset.Selection) (Session, error) {
	return m.Update(id, func(s Session) (Session, error) {
		return s.WithSelection(sel), nil
	})
}

// ReplaceDataset binds the session to ds, e.g. after an upload
func (m *Manager) ReplaceDataset(id core.SessionID, ds *dataset.Dataset, sel dataset.Selection) (Session, error) {
	s, err := m.Update(id, func(s Session) (Session, error) {
		return s.WithDataset(ds, sel), nil
	})
	if err == nil {
		log.Printf("[Session] %s now uses dataset %s (%d rows)", id, ds.Name, ds.Len())
	}
	return s, err
}

// Reset puts the session back on the default dataset
func (m *Manager) Reset(id core.SessionID) (Session, error) {
	if m.defaults == nil {
		return m.Update(id, func(s Session) (Session, error) {
			return s.WithDataset(nil, dataset.Selection{}), nil
		})
	}
	ds, sel := m.defaults()
	return m.ReplaceDataset(id, ds, sel)
}

// Delete drops a session
func (m *Manager) Delete(id core.SessionID) {
	m.sessionsMu.Lock()
	delete(m.sessions, id)
	m.sessionsMu.Unlock()
}

// Len returns the number of stored sessions, expired ones included until the
// next Expire
func (m *Manager) Len() int {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return len(m.sessions)
}

// Expire removes sessions idle for longer than the TTL and returns how many went
func (m *Manager) Expire(now time.Time) int {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run expires idle sessions every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Expire(m.now()); n > 0 {
				log.Printf("[Session] Expired %d idle sessions (active sessions: %d)", n, m.Len())
			}
		}
	}
}

func (m *Manager) expired(s Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.LastSeen) > m.ttl
}
