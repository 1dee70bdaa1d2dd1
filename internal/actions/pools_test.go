package actions

import (
	"testing"

	"github.com/railplan/copilot/internal/models"
)

func TestCreatePool(t *testing.T) {
	d := testDispatcher()
	c := NewContext("", nil)
	snap := testSnapshot()

	out := d.Apply(c, models.ActionPayload{"action": "create_service_pool", "name": "IC Services"}, snap)
	if out.Kind != models.OutcomeApplied {
		t.Fatalf("kind = %s, feedback %q", out.Kind, out.Feedback)
	}
	if len(snap.Pools) == len(out.Snapshot.Pools) {
		t.Error("outcome snapshot is not a fresh copy")
	}

	// Duplicate names collapse under normalization.
	out = d.Apply(c, models.ActionPayload{"action": "create_vehicle_pool", "name": "  REGIO "}, snap)
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("duplicate name kind = %s", out.Kind)
	}

	out = d.Apply(c, models.ActionPayload{"action": "create_vehicle_pool"}, snap)
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("missing name kind = %s", out.Kind)
	}
}

func TestRenamePool(t *testing.T) {
	d := testDispatcher()
	c := NewContext("", nil)
	snap := testSnapshot()

	out := d.Apply(c, models.ActionPayload{
		"action": "rename_vehicle_pool", "target": "Regio", "name": "Regionalverkehr",
	}, snap)
	if out.Kind != models.OutcomeApplied {
		t.Fatalf("kind = %s, feedback %q", out.Kind, out.Feedback)
	}
	if out.Snapshot.PoolByID("vp1").Name != "Regionalverkehr" {
		t.Error("pool not renamed in outcome snapshot")
	}
	if snap.PoolByID("vp1").Name != "Regio" {
		t.Error("input snapshot mutated")
	}
	if out.Changes[0].Details["previousName"] != "Regio" {
		t.Errorf("details = %v", out.Changes[0].Details)
	}
}

func TestSystemPoolProtected(t *testing.T) {
	d := testDispatcher()
	c := NewContext("", nil)
	snap := testSnapshot()
	systemID := models.SystemPoolID(models.PoolKindVehicle)

	out := d.Apply(c, models.ActionPayload{
		"action": "rename_vehicle_pool", "target": systemID, "name": "Mine",
	}, snap)
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("rename system pool kind = %s", out.Kind)
	}

	out = d.Apply(c, models.ActionPayload{"action": "delete_vehicle_pool", "target": systemID}, snap)
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("delete system pool kind = %s", out.Kind)
	}

	// The system pool is invisible to name resolution.
	out = d.Apply(c, models.ActionPayload{"action": "delete_vehicle_pool", "target": "Unassigned"}, snap)
	if out.Kind != models.OutcomeFeedback {
		t.Errorf("system pool by label kind = %s", out.Kind)
	}
}

func TestDeletePoolReassignsMembers(t *testing.T) {
	d := testDispatcher()
	c := NewContext("", nil)
	snap := testSnapshot()
	snap.Vehicles = append(snap.Vehicles, models.Vehicle{ID: "v2", VehicleNumber: "4712", PoolID: "vp1"})

	out := d.Apply(c, models.ActionPayload{"action": "delete_vehicle_pool", "target": "Regio"}, snap)
	if out.Kind != models.OutcomeApplied {
		t.Fatalf("kind = %s, feedback %q", out.Kind, out.Feedback)
	}
	if out.Snapshot.PoolByID("vp1") != nil {
		t.Error("pool still present")
	}
	systemID := models.SystemPoolID(models.PoolKindVehicle)
	for _, v := range out.Snapshot.Vehicles {
		if v.PoolID != systemID {
			t.Errorf("vehicle %s kept pool %s", v.VehicleNumber, v.PoolID)
		}
	}
	if out.Changes[0].Details["membersReassigned"] != 2 {
		t.Errorf("details = %v", out.Changes[0].Details)
	}
}

func TestPoolRefByIDObject(t *testing.T) {
	d := testDispatcher()
	c := NewContext("", nil)

	out := d.Apply(c, models.ActionPayload{
		"action": "rename_vehicle_pool",
		"target": map[string]any{"id": "vp1"},
		"name":   "Neu",
	}, testSnapshot())
	if out.Kind != models.OutcomeApplied {
		t.Fatalf("kind = %s, feedback %q", out.Kind, out.Feedback)
	}
}
