package actions

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/models"
)

type topoSource struct {
	state *models.TopologyState
}

func (s *topoSource) Topology() *models.TopologyState {
	if s.state == nil {
		return &models.TopologyState{}
	}
	return s.state
}

type allowlistPolicy struct {
	allowed map[string]bool
}

func (p *allowlistPolicy) IsAllowed(action, role string) bool { return p.allowed[action] }

func testDispatcher() *Dispatcher {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewDispatcher(nil, log)
}

func testSnapshot() *models.ResourceSnapshot {
	snap := &models.ResourceSnapshot{
		Pools: []models.Pool{
			{ID: "vp1", Kind: models.PoolKindVehicle, Name: "Regio"},
		},
		Vehicles: []models.Vehicle{
			{ID: "v1", VehicleNumber: "4711", PoolID: "vp1"},
		},
	}
	snap.EnsureSystemPools()
	return snap
}

func TestDispatchMissingAction(t *testing.T) {
	d := testDispatcher()
	out := d.Apply(NewContext("", nil), models.ActionPayload{}, testSnapshot())
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("kind = %s", out.Kind)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d := testDispatcher()
	out := d.Apply(NewContext("", nil), models.ActionPayload{"action": "teleport"}, testSnapshot())
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("kind = %s", out.Kind)
	}
}

func TestDispatchRolePolicy(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	d := NewDispatcher(&allowlistPolicy{allowed: map[string]bool{"create_vehicle": true}}, log)
	c := NewContext("viewer", nil)

	out := d.Apply(c, models.ActionPayload{"action": "create_vehicle_pool", "name": "X"}, testSnapshot())
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("denied action kind = %s", out.Kind)
	}

	out = d.Apply(c, models.ActionPayload{"action": "create_vehicle", "vehicleNumber": "9999"}, testSnapshot())
	if out.Kind != models.OutcomeApplied {
		t.Errorf("allowed action kind = %s, feedback %q", out.Kind, out.Feedback)
	}
}

func TestBatchThreadsSnapshot(t *testing.T) {
	d := testDispatcher()
	// The second action references the pool the first one creates.
	payload := models.ActionPayload{
		"action": "batch",
		"actions": []any{
			map[string]any{"action": "create_vehicle_pool", "name": "Fernverkehr"},
			map[string]any{"action": "create_vehicle", "vehicleNumber": "8001", "pool": "Fernverkehr"},
		},
	}
	out := d.Apply(NewContext("", nil), payload, testSnapshot())
	if out.Kind != models.OutcomeApplied {
		t.Fatalf("kind = %s, feedback %q", out.Kind, out.Feedback)
	}
	if len(out.Changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(out.Changes))
	}

	var poolID string
	for _, pool := range out.Snapshot.Pools {
		if pool.Name == "Fernverkehr" {
			poolID = pool.ID
		}
	}
	if poolID == "" {
		t.Fatal("pool missing from final snapshot")
	}
	found := false
	for _, v := range out.Snapshot.Vehicles {
		if v.VehicleNumber == "8001" && v.PoolID == poolID {
			found = true
		}
	}
	if !found {
		t.Error("vehicle not assigned to the pool created earlier in the batch")
	}
}

func TestBatchAbortsOnFailure(t *testing.T) {
	d := testDispatcher()
	payload := models.ActionPayload{
		"action": "batch",
		"actions": []any{
			map[string]any{"action": "create_vehicle_pool", "name": "A"},
			map[string]any{"action": "create_vehicle"}, // missing vehicleNumber
		},
	}
	out := d.Apply(NewContext("", nil), payload, testSnapshot())
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("kind = %s, want feedback from the failing sub-action", out.Kind)
	}
}

func TestBatchRejectsNesting(t *testing.T) {
	d := testDispatcher()
	payload := models.ActionPayload{
		"action": "batch",
		"actions": []any{
			map[string]any{"action": "batch", "actions": []any{}},
		},
	}
	out := d.Apply(NewContext("", nil), payload, testSnapshot())
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("kind = %s", out.Kind)
	}
}

func TestBatchEmpty(t *testing.T) {
	d := testDispatcher()
	out := d.Apply(NewContext("", nil), models.ActionPayload{"action": "batch"}, testSnapshot())
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("kind = %s", out.Kind)
	}
}

func TestBatchClarificationCarriesSubPath(t *testing.T) {
	snap := testSnapshot()
	snap.Pools = append(snap.Pools, models.Pool{ID: "vp2", Kind: models.PoolKindVehicle, Name: "regio"})

	d := testDispatcher()
	payload := models.ActionPayload{
		"action": "batch",
		"actions": []any{
			map[string]any{"action": "create_vehicle_pool", "name": "X"},
			map[string]any{"action": "create_vehicle", "vehicleNumber": "8002", "pool": "Regio"},
		},
	}
	out := d.Apply(NewContext("", nil), payload, snap)
	if out.Kind != models.OutcomeClarification {
		t.Fatalf("kind = %s, feedback %q", out.Kind, out.Feedback)
	}
	want := []any{"actions", 1, "pool"}
	got := out.Clarification.Apply.Path
	if len(got) != len(want) {
		t.Fatalf("apply path = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("apply path = %v, want %v", got, want)
		}
	}
}

func TestApplyEmitsTopologyTasksOnce(t *testing.T) {
	d := testDispatcher()
	c := NewContext("", &topoSource{})
	payload := models.ActionPayload{
		"action": "batch",
		"actions": []any{
			map[string]any{"action": "create_replacement_route", "name": "SEV 1"},
			map[string]any{"action": "create_replacement_route", "name": "SEV 2"},
		},
	}
	out := d.Apply(c, payload, testSnapshot())
	if out.Kind != models.OutcomeApplied {
		t.Fatalf("kind = %s, feedback %q", out.Kind, out.Feedback)
	}
	if len(out.CommitTasks) != 1 {
		t.Fatalf("tasks = %d, want a single scope replacement", len(out.CommitTasks))
	}
	routes, ok := out.CommitTasks[0].Items.([]models.ReplacementRoute)
	if !ok || len(routes) != 2 {
		t.Errorf("task items = %T with %d routes", out.CommitTasks[0].Items, len(routes))
	}
}

func TestDeriveHints(t *testing.T) {
	d := testDispatcher()
	out := d.Apply(NewContext("", nil), models.ActionPayload{"action": "create_vehicle_pool", "name": "Y"}, testSnapshot())
	if len(out.RefreshHints) != 1 || out.RefreshHints[0] != "vehicle-pools" {
		t.Errorf("hints = %v", out.RefreshHints)
	}

	c := NewContext("", &topoSource{})
	out = d.Apply(c, models.ActionPayload{"action": "create_replacement_route", "name": "SEV"}, testSnapshot())
	if len(out.RefreshHints) != 1 || out.RefreshHints[0] != "topology/"+models.ScopeReplacementRoutes {
		t.Errorf("topology hints = %v", out.RefreshHints)
	}
}
