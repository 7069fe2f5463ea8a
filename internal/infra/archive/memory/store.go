// Package memory provides an in-process issuance archive. Nothing survives
// a restart, which is exactly what tests want.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"wols/internal/archive/core"

	"github.com/google/uuid"
)

// Store keeps issuances in a map guarded by a read-write mutex.
type Store struct {
	mu        sync.RWMutex
	issuances map[uuid.UUID]core.Issuance
}

// New returns an empty in-memory archive.
func New() *Store {
	return &Store{issuances: make(map[uuid.UUID]core.Issuance)}
}

// Record stores the issuance, replacing any previous row with the same ID.
func (s *Store) Record(_ context.Context, iss core.Issuance) error {
	iss, err := iss.Normalize()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuances[iss.ID] = iss
	return nil
}

// List returns issuances newest first; limit <= 0 returns everything.
func (s *Store) List(_ context.Context, limit int) ([]core.Issuance, error) {
	s.mu.RLock()
	out := make([]core.Issuance, 0, len(s.issuances))
	for _, iss := range s.issuances {
		out = append(out, iss)
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// FindBySpecimen returns all issuances for the specimen, newest first.
func (s *Store) FindBySpecimen(_ context.Context, specimenID string) ([]core.Issuance, error) {
	s.mu.RLock()
	var out []core.Issuance
	for _, iss := range s.issuances {
		if iss.SpecimenID == specimenID {
			out = append(out, iss)
		}
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

// Driver reports the backend kind.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Close is a no-op for the in-memory archive.
func (s *Store) Close() error { return nil }

func sortNewestFirst(issuances []core.Issuance) {
	sort.Slice(issuances, func(i, j int) bool {
		a, b := issuances[i], issuances[j]
		if !a.IssuedAt.Equal(b.IssuedAt) {
			return a.IssuedAt.After(b.IssuedAt)
		}
		return strings.Compare(a.ID.String(), b.ID.String()) < 0
	})
}
