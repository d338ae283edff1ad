package store

import (
	"context"
	"sync"
	"time"

	"github.com/paylinkr/gatekeeper/core"
)

// MemorySessionStore is an in-memory SessionStore for tests and local
// development without Redis.
type MemorySessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]core.Session
	byAddress map[string][]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:  make(map[string]core.Session),
		byAddress: make(map[string][]string),
	}
}

func (s *MemorySessionStore) Create(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = *session
	s.byAddress[session.WalletAddress] = append(s.byAddress[session.WalletAddress], session.ID)
	return nil
}

func (s *MemorySessionStore) Find(_ context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, core.E(core.KindNotFound, "session not found")
	}
	return &session, nil
}

func (s *MemorySessionStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	session.Valid = false
	s.sessions[id] = session
	return nil
}

func (s *MemorySessionStore) RevokeAddress(_ context.Context, address string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for _, id := range s.byAddress[address] {
		session, ok := s.sessions[id]
		if !ok || !session.Valid {
			continue
		}
		session.Valid = false
		s.sessions[id] = session
		revoked++
	}
	return revoked, nil
}

// MemoryReplayGuard is an in-memory ReplayGuard for tests.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{seen: make(map[string]time.Time)}
}

func (g *MemoryReplayGuard) Remember(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if expiry, ok := g.seen[nonce]; ok && now.Before(expiry) {
		return false, nil
	}
	g.seen[nonce] = now.Add(ttl)
	return true, nil
}
