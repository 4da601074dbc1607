package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      TokenData
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Used when no Redis URL is configured.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	refresh map[string]memoryEntry
	revoked map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		refresh: make(map[string]memoryEntry),
		revoked: make(map[string]time.Time),
	}
}

func (s *MemoryStore) SaveRefreshSession(_ context.Context, tokenHash string, data TokenData, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = now
	}
	if !expiresAt.After(now) {
		expiresAt = now.Add(defaultRefreshTTL)
	}
	s.refresh[tokenHash] = memoryEntry{data: data, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) LookupRefreshSession(_ context.Context, tokenHash string) (TokenData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.refresh[tokenHash]
	if !ok {
		return TokenData{}, ErrNotFound
	}
	if !entry.expiresAt.After(s.now()) {
		delete(s.refresh, tokenHash)
		return TokenData{}, ErrNotFound
	}
	return entry.data, nil
}

func (s *MemoryStore) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, tokenHash)
	return nil
}

func (s *MemoryStore) RevokeAccessToken(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !expiresAt.After(now) {
		return nil
	}
	s.revoked[jti] = expiresAt
	for id, until := range s.revoked {
		if !until.After(now) {
			delete(s.revoked, id)
		}
	}
	return nil
}

func (s *MemoryStore) IsAccessTokenRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[jti]
	return ok && until.After(s.now()), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
