package session

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// ErrNotFound is returned by Get when no record exists for the user.
var ErrNotFound = errors.New("session: record not found")

// Listing is one entry of a full scan. Err is set when the record exists
// but could not be read; scans report it and move on.
type Listing struct {
	UserID int64
	Record *Record
	Err    error
}

// Store is the keyed persistence contract for session records.
type Store interface {
	Get(ctx context.Context, userID int64) (*Record, error)
	Put(ctx context.Context, userID int64, rec *Record) error
	ListAll(ctx context.Context) ([]Listing, error)
}

func encode(rec *Record) ([]byte, error) {
	return json.Marshal(rec)
}

func encodeIndent(rec *Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

func decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MemoryStore keeps encoded records in a map. It backs tests and the
// "memory" backend.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[int64][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*Record, error) {
	s.mu.RLock()
	raw, ok := s.data[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(raw)
}

func (s *MemoryStore) Put(_ context.Context, userID int64, rec *Record) error {
	raw, err := encode(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[userID] = raw
	s.mu.Unlock()
	return nil
}

// PutRaw stores undecoded bytes; tests use it to plant corrupt records.
func (s *MemoryStore) PutRaw(userID int64, raw []byte) {
	s.mu.Lock()
	s.data[userID] = slices.Clone(raw)
	s.mu.Unlock()
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Listing, error) {
	s.mu.RLock()
	ids := slices.Sorted(maps.Keys(s.data))
	out := make([]Listing, 0, len(ids))
	for _, id := range ids {
		rec, err := decode(s.data[id])
		out = append(out, Listing{UserID: id, Record: rec, Err: err})
	}
	s.mu.RUnlock()
	return out, nil
}
