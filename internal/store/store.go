// Package store holds the canonical master data: the current resource
// snapshot, the topology collections and the content hash that guards
// optimistic commits.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/railplan/copilot/internal/models"
)

// ResourceStore is the in-memory canonical store. Snapshots and topology
// state handed out are never mutated in place; a commit swaps whole
// revisions under the lock.
type ResourceStore struct {
	mu   sync.RWMutex
	snap *models.ResourceSnapshot
	topo *models.TopologyState
	hash string
}

// NewResourceStore creates a store seeded with empty collections and the
// synthetic system pools.
func NewResourceStore() *ResourceStore {
	s := &ResourceStore{
		snap: &models.ResourceSnapshot{},
		topo: &models.TopologyState{},
	}
	s.snap.EnsureSystemPools()
	s.hash = computeHash(s.snap, s.topo)
	return s
}

// Load replaces the full store contents, normalizing system pools. Used at
// startup and by tests; concurrent previews against the old revision will
// fail their commit on the hash check.
func (s *ResourceStore) Load(snap *models.ResourceSnapshot, topo *models.TopologyState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap == nil {
		snap = &models.ResourceSnapshot{}
	}
	if topo == nil {
		topo = &models.TopologyState{}
	}
	snap.EnsureSystemPools()
	s.snap = snap
	s.topo = topo
	s.hash = computeHash(s.snap, s.topo)
}

// Snapshot returns a deep copy of the current snapshot and the revision
// hash it belongs to.
func (s *ResourceStore) Snapshot() (*models.ResourceSnapshot, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone(), s.hash
}

// Hash returns the current revision hash.
func (s *ResourceStore) Hash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hash
}

// Topology returns the canonical topology collections. Callers treat the
// returned state as immutable; mutations go through a working set and come
// back via ReplaceTopologyScope.
func (s *ResourceStore) Topology() *models.TopologyState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topo
}

// Replace swaps in the next snapshot if the store still carries the
// revision the caller previewed against. Returns the new hash, or
// ErrStaleSnapshot when the store moved on.
func (s *ResourceStore) Replace(next *models.ResourceSnapshot, expectedHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hash != expectedHash {
		return "", models.ErrStaleSnapshot
	}
	next.EnsureSystemPools()
	s.snap = next
	s.hash = computeHash(s.snap, s.topo)
	return s.hash, nil
}

// ReplaceTopologyScope swaps one topology collection wholesale, as the
// per-scope commit tasks instruct.
func (s *ResourceStore) ReplaceTopologyScope(scope string, items any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.topo.Clone()
	switch scope {
	case models.ScopeOperationalPoints:
		v, ok := items.([]models.OperationalPoint)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.OperationalPoints = v
	case models.ScopeSectionsOfLine:
		v, ok := items.([]models.SectionOfLine)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.SectionsOfLine = v
	case models.ScopePersonnelSites:
		v, ok := items.([]models.PersonnelSite)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.PersonnelSites = v
	case models.ScopeReplacementStops:
		v, ok := items.([]models.ReplacementStop)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.ReplacementStops = v
	case models.ScopeReplacementRoutes:
		v, ok := items.([]models.ReplacementRoute)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.ReplacementRoutes = v
	case models.ScopeReplacementEdges:
		v, ok := items.([]models.ReplacementEdge)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.ReplacementEdges = v
	case models.ScopeStopLinks:
		v, ok := items.([]models.OpReplacementStopLink)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.StopLinks = v
	case models.ScopeTransferEdges:
		v, ok := items.([]models.TransferEdge)
		if !ok {
			return fmt.Errorf("scope %q: unexpected item type %T", scope, items)
		}
		next.TransferEdges = v
	default:
		return fmt.Errorf("unknown topology scope %q", scope)
	}

	s.topo = next
	s.hash = computeHash(s.snap, s.topo)
	return nil
}

// revision is the hashed shape: resources plus topology, so a topology
// change invalidates pending previews the same way a resource change does.
type revision struct {
	Resources *models.ResourceSnapshot `json:"resources"`
	Topology  *models.TopologyState    `json:"topology"`
}

func computeHash(snap *models.ResourceSnapshot, topo *models.TopologyState) string {
	raw, err := json.Marshal(revision{Resources: snap, Topology: topo})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
