package interpret

import (
	"testing"

	"github.com/railplan/copilot/internal/models"
)

func TestSanitizeDropsUnknownAndWronglyTyped(t *testing.T) {
	in := models.ActionPayload{
		"action":       "create_vehicle",
		"name":         "ICE 4711",
		"capacity":     float64(400),
		"hallucinated": "field",
		"seq":          "not a number",
		"patch":        "not an object",
	}
	out := Sanitize(in)

	if out.Action() != "create_vehicle" || out.String("name") != "ICE 4711" {
		t.Errorf("known fields lost: %v", out)
	}
	if _, ok := out["hallucinated"]; ok {
		t.Error("unknown field kept")
	}
	if _, ok := out["seq"]; ok {
		t.Error("wrongly-typed number kept")
	}
	if _, ok := out["patch"]; ok {
		t.Error("wrongly-typed object kept")
	}
	if n, ok := out.Int("capacity"); !ok || n != 400 {
		t.Errorf("capacity = %d, %v", n, ok)
	}
}

func TestSanitizeRecursesIntoPatchAndActions(t *testing.T) {
	in := models.ActionPayload{
		"action": "batch",
		"actions": []any{
			map[string]any{
				"action": "update_vehicle",
				"target": "4711",
				"patch": map[string]any{
					"pool":    map[string]any{"name": "Regio", "confidence": 0.9},
					"invalid": true,
				},
			},
			"a bare string does not belong here",
		},
	}
	out := Sanitize(in)

	actions := out.Objects("actions")
	if len(actions) != 1 {
		t.Fatalf("actions = %d, want 1 (non-object dropped)", len(actions))
	}
	patch := actions[0].Object("patch")
	if _, ok := patch["invalid"]; ok {
		t.Error("unknown patch field kept")
	}
	pool := patch.Object("pool")
	if pool.String("name") != "Regio" {
		t.Errorf("pool ref = %v", pool)
	}
	if _, ok := pool["confidence"]; ok {
		t.Error("extra ref field kept")
	}
}

func TestSanitizeRefShapes(t *testing.T) {
	in := models.ActionPayload{
		"action": "create_vehicle",
		"pool":   map[string]any{"id": "p1"},
		"target": map[string]any{"confidence": 0.5},
	}
	out := Sanitize(in)

	if out.Object("pool").String("id") != "p1" {
		t.Errorf("pool = %v", out["pool"])
	}
	// A ref object with no usable field is dropped entirely.
	if _, ok := out["target"]; ok {
		t.Error("empty ref object kept")
	}
}

func TestSanitizeVehicleTypesArray(t *testing.T) {
	in := models.ActionPayload{
		"action":       "create_vehicle_composition",
		"vehicleTypes": []any{"BR 412", map[string]any{"name": "BR 423"}, "BR 423"},
	}
	out := Sanitize(in)

	arr := out.Array("vehicleTypes")
	if len(arr) != 2 {
		t.Fatalf("vehicleTypes = %d, want 2 (object dropped)", len(arr))
	}
	if arr[0] != "BR 412" || arr[1] != "BR 423" {
		t.Errorf("vehicleTypes = %v", arr)
	}
}

func TestSanitizeSharesNoStructure(t *testing.T) {
	in := models.ActionPayload{
		"action": "update_vehicle",
		"patch":  map[string]any{"name": "a"},
	}
	out := Sanitize(in)
	out.Object("patch")["name"] = "b"
	if in.Object("patch").String("name") != "a" {
		t.Error("sanitized payload shares structure with input")
	}
}

func TestSanitizeNil(t *testing.T) {
	if Sanitize(nil) != nil {
		t.Error("Sanitize(nil) should be nil")
	}
}
