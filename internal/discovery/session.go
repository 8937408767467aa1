// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package discovery

import (
	"sync"
	"time"

	"github.com/driftwood-io/driftwood/internal/metrics"
)

// sessionState is the per-session mutable state: the monotonic shown-set and
// the FIFO window of recently shown domains.
//
// mu serializes the whole read-exclusions → select → record-shown region for
// overlapping requests on the same session. Different sessions never share
// state, so cross-user requests proceed without coordination.
type sessionState struct {
	mu         sync.Mutex
	shown      map[string]struct{}
	window     []string
	windowCap  int
	lastActive time.Time

	// evicted marks state removed by a TTL sweep. A holder of a stale
	// pointer sees it after locking mu and must re-acquire.
	evicted bool
}

// exclusions returns a copy of the shown-set. Callers must hold mu.
func (s *sessionState) exclusions() []string {
	ids := make([]string, 0, len(s.shown))
	for id := range s.shown {
		ids = append(ids, id)
	}
	return ids
}

// hasShown reports whether the identifier was already returned this session.
// Callers must hold mu.
func (s *sessionState) hasShown(id string) bool {
	_, ok := s.shown[id]
	return ok
}

// windowSnapshot returns a copy of the recent-domain window, oldest first.
// Callers must hold mu.
func (s *sessionState) windowSnapshot() []string {
	w := make([]string, len(s.window))
	copy(w, s.window)
	return w
}

// recordShown appends to the shown-set and the domain window. The shown-set
// only grows for the session's lifetime; the window evicts its oldest entry
// past capacity. Callers must hold mu.
func (s *sessionState) recordShown(id, domain string) {
	s.shown[id] = struct{}{}
	if s.windowCap > 0 {
		s.window = append(s.window, domain)
		if len(s.window) > s.windowCap {
			s.window = s.window[1:]
		}
	}
	s.lastActive = time.Now()
}

// SessionDiagnostics is a read-only view of session state for the
// diagnostics endpoint and tests.
type SessionDiagnostics struct {
	// ShownCount is the size of the session's shown-set.
	ShownCount int `json:"shown_count"`

	// DomainWindow is the recent-domain window, oldest first.
	DomainWindow []string `json:"domain_window"`

	// LastActive is when the session last recorded a selection.
	LastActive time.Time `json:"last_active"`
}

// SessionStore tracks all live sessions. Sessions are created on first use
// and discarded when idle past their TTL; nothing is persisted.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*sessionState
	windowCap int
}

// NewSessionStore creates a session store with the given domain window
// capacity.
func NewSessionStore(windowCap int) *SessionStore {
	if windowCap < 0 {
		windowCap = 0
	}
	return &SessionStore{
		sessions:  make(map[string]*sessionState),
		windowCap: windowCap,
	}
}

// sessionKey scopes sessions per user so identifiers can't collide across
// users.
func sessionKey(userID, sessionID string) string {
	return userID + "\x00" + sessionID
}

// acquire returns the session state, creating it on first use.
func (s *SessionStore) acquire(userID, sessionID string) *sessionState {
	key := sessionKey(userID, sessionID)

	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[key]; ok {
		return sess
	}
	sess = &sessionState{
		shown:      make(map[string]struct{}),
		windowCap:  s.windowCap,
		lastActive: time.Now(),
	}
	s.sessions[key] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess
}

// acquireLocked returns the session with its mutex held. A TTL sweep can
// evict the state between the map lookup and the lock; the loop detects
// that and re-acquires so mutations never land in orphaned state.
func (s *SessionStore) acquireLocked(userID, sessionID string) *sessionState {
	for {
		sess := s.acquire(userID, sessionID)
		sess.mu.Lock()
		if !sess.evicted {
			return sess
		}
		sess.mu.Unlock()
	}
}

// Diagnostics returns a read-only view of one session's state.
func (s *SessionStore) Diagnostics(userID, sessionID string) (SessionDiagnostics, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionKey(userID, sessionID)]
	s.mu.RUnlock()
	if !ok {
		return SessionDiagnostics{}, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.evicted {
		return SessionDiagnostics{}, false
	}
	return SessionDiagnostics{
		ShownCount:   len(sess.shown),
		DomainWindow: sess.windowSnapshot(),
		LastActive:   sess.lastActive,
	}, true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle discards sessions idle longer than ttl and returns how many were
// removed.
func (s *SessionStore) EvictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastActive.Before(cutoff)
		if idle {
			sess.evicted = true
		}
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, key)
			evicted++
		}
	}

	if evicted > 0 {
		metrics.SessionsEvictedTotal.Add(float64(evicted))
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}
	return evicted
}
