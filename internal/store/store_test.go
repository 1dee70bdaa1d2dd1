package store

import (
	"errors"
	"testing"

	"github.com/railplan/copilot/internal/models"
)

func TestNewResourceStoreSeedsSystemPools(t *testing.T) {
	s := NewResourceStore()
	snap, hash := s.Snapshot()
	if hash == "" {
		t.Fatal("empty revision hash")
	}
	for _, kind := range []string{models.PoolKindVehicle, models.PoolKindService, models.PoolKindPersonnel} {
		pool := snap.PoolByID(models.SystemPoolID(kind))
		if pool == nil || !pool.System {
			t.Errorf("missing system pool for %s", kind)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewResourceStore()
	snap, _ := s.Snapshot()
	snap.Pools[0].Name = "mutated"

	fresh, _ := s.Snapshot()
	if fresh.Pools[0].Name == "mutated" {
		t.Error("snapshot mutation leaked into store")
	}
}

func TestReplaceCAS(t *testing.T) {
	s := NewResourceStore()
	snap, hash := s.Snapshot()

	next := snap.Clone()
	next.Pools = append(next.Pools, models.Pool{ID: "p1", Kind: models.PoolKindVehicle, Name: "Regio"})

	newHash, err := s.Replace(next, hash)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if newHash == hash || newHash != s.Hash() {
		t.Errorf("hash = %q, store %q, old %q", newHash, s.Hash(), hash)
	}

	// A second replace against the old revision loses.
	stale := snap.Clone()
	if _, err := s.Replace(stale, hash); !errors.Is(err, models.ErrStaleSnapshot) {
		t.Errorf("stale replace err = %v, want ErrStaleSnapshot", err)
	}
}

func TestReplaceTopologyScope(t *testing.T) {
	s := NewResourceStore()
	before := s.Hash()

	ops := []models.OperationalPoint{{OpID: "op1", UniqueOpID: "DE-HBF", Name: "Hauptbahnhof"}}
	if err := s.ReplaceTopologyScope(models.ScopeOperationalPoints, ops); err != nil {
		t.Fatalf("ReplaceTopologyScope: %v", err)
	}
	if len(s.Topology().OperationalPoints) != 1 {
		t.Error("scope not replaced")
	}
	// Topology is part of the revision: pending previews must conflict.
	if s.Hash() == before {
		t.Error("topology replace did not move the hash")
	}

	if err := s.ReplaceTopologyScope(models.ScopeOperationalPoints, []models.ReplacementStop{}); err == nil {
		t.Error("wrong item type accepted")
	}
	if err := s.ReplaceTopologyScope("moon-bases", nil); err == nil {
		t.Error("unknown scope accepted")
	}
}

func TestLoadNormalizesSystemPools(t *testing.T) {
	s := NewResourceStore()
	s.Load(&models.ResourceSnapshot{
		Pools: []models.Pool{{ID: "p1", Kind: models.PoolKindVehicle, Name: "Regio"}},
	}, nil)

	snap, _ := s.Snapshot()
	if snap.PoolByID(models.SystemPoolID(models.PoolKindVehicle)) == nil {
		t.Error("Load dropped the system pools")
	}
	if snap.PoolByID("p1") == nil {
		t.Error("Load dropped the seeded pool")
	}
}
