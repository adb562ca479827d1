// Package memory keeps harvest metadata in-memory for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

// Store holds landing and staging records in maps keyed by Id.
type Store struct {
	mu      sync.RWMutex
	landing map[string]harvest.HarvestRecord
	staging map[string]harvest.StagingRecord
}

// NewStore creates an empty in-memory metadata store.
func NewStore() *Store {
	return &Store{
		landing: make(map[string]harvest.HarvestRecord),
		staging: make(map[string]harvest.StagingRecord),
	}
}

// UpsertLanding inserts or replaces the landing record keyed by Id.
func (s *Store) UpsertLanding(_ context.Context, rec harvest.HarvestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.landing[rec.ID] = rec
	return nil
}

// UpsertStaging inserts or replaces the staging record keyed by Id.
func (s *Store) UpsertStaging(_ context.Context, rec harvest.StagingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staging[rec.ID] = rec
	return nil
}

// FindLanding returns landing records whose partition timestamp falls in
// [from, to], ordered by partition then Id.
func (s *Store) FindLanding(_ context.Context, from, to time.Time) ([]harvest.HarvestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []harvest.HarvestRecord
	for _, rec := range s.landing {
		if rec.PartitionTS.Before(from) || rec.PartitionTS.After(to) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].PartitionTS.Equal(recs[j].PartitionTS) {
			return recs[i].PartitionTS.Before(recs[j].PartitionTS)
		}
		return recs[i].ID < recs[j].ID
	})
	return recs, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// LandingCount returns the number of landing records. Test helper.
func (s *Store) LandingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.landing)
}

// Landing returns the landing record for id. Test helper.
func (s *Store) Landing(id string) (harvest.HarvestRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.landing[id]
	return rec, ok
}

// StagingCount returns the number of staging records. Test helper.
func (s *Store) StagingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staging)
}

// Staging returns the staging record for id. Test helper.
func (s *Store) Staging(id string) (harvest.StagingRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.staging[id]
	return rec, ok
}
