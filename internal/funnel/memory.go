package funnel

import (
	"context"
	"sort"
	"sync"
	"time"
)

// sweepEvery bounds how often Save scans for expired entries.
const sweepEvery = time.Minute

type memoryKey struct {
	session string
	step    string
}

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// MemoryStore keeps blobs in process memory. It is the default store and
// loses everything on restart. Entries older than ttl are invisible to
// Load and List and are dropped by a periodic sweep on Save; zero ttl keeps
// them forever.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[memoryKey]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[memoryKey]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.updatedAt) >= s.ttl
}

func (s *MemoryStore) Save(_ context.Context, sessionID, step string, data []byte) error {
	// Copy so later mutation of the caller's slice can't reach the store.
	buf := append([]byte(nil), data...)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memoryKey{sessionID, step}] = memoryEntry{data: buf, updatedAt: now}
	if s.ttl > 0 && !now.Before(s.nextSweep) {
		s.sweepLocked(now)
		s.nextSweep = now.Add(sweepEvery)
	}
	return nil
}

// sweepLocked deletes expired entries. s.mu must be held for writing.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
		}
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID, step string) ([]byte, error) {
	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[memoryKey{sessionID, step}]
	s.mu.RUnlock()
	if !ok || s.expired(e, now) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, step string) error {
	s.mu.Lock()
	delete(s.entries, memoryKey{sessionID, step})
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context, step string) ([]Entry, error) {
	now := s.now()
	s.mu.RLock()
	out := []Entry{}
	for k, e := range s.entries {
		if k.step != step || s.expired(e, now) {
			continue
		}
		out = append(out, Entry{
			SessionID: k.session,
			Step:      k.step,
			Data:      append([]byte(nil), e.data...),
			UpdatedAt: e.updatedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
