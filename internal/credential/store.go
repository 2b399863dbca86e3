// Package credential owns the access credential: durable storage and
// claim inspection.
package credential

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/care-client/internal/storage"
)

const storageKey = "access_credential"

// Store holds the current access credential. The credential is replaced
// wholesale, never partially written, and at most one is current at a time.
// No validation happens here; that is the Inspector's job.
type Store struct {
	mu      sync.RWMutex
	kv      storage.KeyValue
	current string
	loaded  bool
}

// NewStore wraps the durable key-value collaborator.
func NewStore(kv storage.KeyValue) *Store {
	return &Store{kv: kv}
}

// Save atomically replaces the current credential, discarding the old one.
func (s *Store) Save(credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(context.Background(), storageKey, credential); err != nil {
		return err
	}
	s.current = credential
	s.loaded = true
	return nil
}

// Current returns the stored credential, or "" and false when none is held.
func (s *Store) Current() (string, bool) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.current, s.current != ""
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		val, err := s.kv.Get(context.Background(), storageKey)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return "", false
		}
		s.current = val
		s.loaded = true
	}
	return s.current, s.current != ""
}

// Clear removes the credential from memory and durable storage.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(context.Background(), storageKey); err != nil {
		return err
	}
	s.current = ""
	s.loaded = true
	return nil
}
