// Package pending holds the in-memory stores for previews awaiting commit
// and clarifications awaiting an answer. Records expire after a TTL and are
// swept lazily on access; both stores bind each record to the identity that
// created it.
package pending

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/railplan/copilot/internal/metrics"
	"github.com/railplan/copilot/internal/models"
)

// identityMatches reports whether a lookup identity may access a record
// bound to (boundClient, boundRole). An empty bound value matches anything;
// a non-empty bound value requires an exact match.
func identityMatches(boundClient, boundRole, clientID, role string) bool {
	if boundClient != "" && boundClient != clientID {
		return false
	}
	if boundRole != "" && boundRole != role {
		return false
	}
	return true
}

// PreviewStore holds previews until they are committed or expire.
type PreviewStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	records map[string]*models.PreviewRecord
}

// NewPreviewStore creates a store whose records expire after ttl.
func NewPreviewStore(ttl time.Duration) *PreviewStore {
	return &PreviewStore{
		ttl:     ttl,
		now:     time.Now,
		records: make(map[string]*models.PreviewRecord),
	}
}

// Put stores a preview, assigning its id and timestamps.
func (s *PreviewStore) Put(rec *models.PreviewRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	rec.ID = uuid.New().String()
	now := s.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = rec
	metrics.PendingPreviews.Set(float64(len(s.records)))
	return rec.ID
}

// Get returns the preview with the given id if the identity matches. An
// identity mismatch is reported as not found so a foreign client cannot
// probe for record existence.
func (s *PreviewStore) Get(id, clientID, role string) (*models.PreviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	rec, ok := s.records[id]
	if !ok {
		return nil, models.ErrPreviewNotFound
	}
	if !identityMatches(rec.ClientID, rec.Role, clientID, role) {
		return nil, models.ErrPreviewNotFound
	}
	return rec, nil
}

// Delete removes a preview. Deleting an absent id is a no-op.
func (s *PreviewStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	metrics.PendingPreviews.Set(float64(len(s.records)))
}

// Len reports the number of live records.
func (s *PreviewStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.records)
}

func (s *PreviewStore) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, rec := range s.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
		}
	}
	metrics.PendingPreviews.Set(float64(len(s.records)))
}

// ClarificationStore holds open clarifications until they are answered or
// expire.
type ClarificationStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	records map[string]*models.ClarificationRecord
}

// NewClarificationStore creates a store whose records expire after ttl.
func NewClarificationStore(ttl time.Duration) *ClarificationStore {
	return &ClarificationStore{
		ttl:     ttl,
		now:     time.Now,
		records: make(map[string]*models.ClarificationRecord),
	}
}

// Put stores a clarification, assigning its id and timestamps.
func (s *ClarificationStore) Put(rec *models.ClarificationRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	rec.ID = uuid.New().String()
	now := s.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = rec
	metrics.PendingClarifications.Set(float64(len(s.records)))
	return rec.ID
}

// Get returns the clarification with the given id if the identity matches.
func (s *ClarificationStore) Get(id, clientID, role string) (*models.ClarificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	rec, ok := s.records[id]
	if !ok {
		return nil, models.ErrClarificationNotFound
	}
	if !identityMatches(rec.ClientID, rec.Role, clientID, role) {
		return nil, models.ErrClarificationNotFound
	}
	return rec, nil
}

// Delete removes a clarification. Deleting an absent id is a no-op.
func (s *ClarificationStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	metrics.PendingClarifications.Set(float64(len(s.records)))
}

// Len reports the number of live records.
func (s *ClarificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.records)
}

func (s *ClarificationStore) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, rec := range s.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
		}
	}
	metrics.PendingClarifications.Set(float64(len(s.records)))
}
