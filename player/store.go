package player

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/oerror"
)

// Store owns every active player record. Records are created on join,
// destroyed on disconnect, and never shared across player IDs.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record

	historySize int
	log         *logrus.Logger
}

// NewStore ...
func NewStore(historySize int, log *logrus.Logger) *Store {
	if historySize <= 0 {
		historySize = 40
	}
	return &Store{
		records:     make(map[string]*Record),
		historySize: historySize,
		log:         log,
	}
}

// Add creates a record for a joining player. Adding an already-present player
// replaces the record, dropping any state from the stale connection.
func (s *Store) Add(id string) *Record {
	rec := newRecord(id, s.historySize, s.log)

	s.mu.Lock()
	if _, ok := s.records[id]; ok {
		s.log.WithField("player", id).Debug("replacing stale player record")
	}
	s.records[id] = rec
	s.mu.Unlock()
	return rec
}

// Get returns the record for an active player, or ErrUnknownPlayer if the
// player never joined or already disconnected.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, oerror.ErrUnknownPlayer
	}
	return rec, nil
}

// Remove destroys the record on disconnect, invalidating further lookups.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
}

// Len returns the number of active records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// IDs returns the IDs of all active records.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids
}
