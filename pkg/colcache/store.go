package colcache

import (
	"encoding/json"
	"sync"
	"time"
)

// Entry is one cached collection: the fully drained page set of a remote
// listing, stamped with the time the producing fetch began.
type Entry struct {
	FetchedAt time.Time         `json:"fetchedAt"`
	Records   []json.RawMessage `json:"records"`
}

// Store persists cache entries keyed by collection identity
// (organization x kind x parameters). Implementations must not replace an
// entry with one carrying an older FetchedAt, so a slow refresh can never
// clobber a newer snapshot.
type Store interface {
	Load(key string) (*Entry, bool, error)
	Save(key string, entry *Entry) error
}

// MemoryStore is the process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (s *MemoryStore) Load(key string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

func (s *MemoryStore) Save(key string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok && existing.FetchedAt.After(entry.FetchedAt) {
		return nil
	}
	s.entries[key] = entry
	return nil
}

var _ Store = (*MemoryStore)(nil)
