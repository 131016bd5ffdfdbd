package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data     []byte
	lastSeen time.Time
}

// MemoryStore keeps encoded records in process memory. Records are stored
// encoded so callers never share a *Record between requests. Last-seen is
// kept beside the data so touches do not rewrite it.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lastSeen := rec.LastSeen
	if prev, ok := s.data[rec.ID]; ok && prev.lastSeen.After(lastSeen) {
		lastSeen = prev.lastSeen
	}
	s.data[rec.ID] = memoryEntry{data: data, lastSeen: lastSeen}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	entry, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	rec, err := decodeRecord(id, entry.data)
	if err != nil {
		return nil, err
	}
	if !entry.lastSeen.IsZero() {
		rec.LastSeen = entry.lastSeen
	}
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *MemoryStore) TouchLastSeen(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[id]
	if !ok {
		return ErrSessionNotFound
	}
	if at.After(entry.lastSeen) {
		entry.lastSeen = at
		s.data[id] = entry
	}
	return nil
}

// Put stores raw bytes under id. Used to exercise corrupt-data handling.
func (s *MemoryStore) Put(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = memoryEntry{data: data}
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
