package topology

import (
	"testing"

	"github.com/railplan/copilot/internal/models"
)

func TestRelinkRewritesAllDependents(t *testing.T) {
	ws := New(testState())

	counts := ws.Relink("DE-HBF", "DE-HBF-NEU")
	if counts.SectionEndpoints != 1 {
		t.Errorf("SectionEndpoints = %d, want 1", counts.SectionEndpoints)
	}
	if counts.Sites != 1 || counts.Stops != 1 || counts.StopLinks != 1 || counts.TransferNodes != 1 {
		t.Errorf("counts = %+v", counts)
	}
	if counts.Total() != 5 {
		t.Errorf("Total() = %d, want 5", counts.Total())
	}

	state := ws.State()
	if state.SectionsOfLine[0].StartUniqueOpID != "DE-HBF-NEU" {
		t.Error("section endpoint not rewritten")
	}
	if state.PersonnelSites[0].UniqueOpID != "DE-HBF-NEU" {
		t.Error("site anchor not rewritten")
	}
	if state.ReplacementStops[0].NearestUniqueOpID != "DE-HBF-NEU" {
		t.Error("stop anchor not rewritten")
	}
	if state.StopLinks[0].UniqueOpID != "DE-HBF-NEU" {
		t.Error("stop link not rewritten")
	}
	if state.TransferEdges[0].From.Ref != "DE-HBF-NEU" {
		t.Error("transfer node not rewritten")
	}

	// No copy of the old identifier may remain anywhere.
	for _, sol := range state.SectionsOfLine {
		if sol.StartUniqueOpID == "DE-HBF" || sol.EndUniqueOpID == "DE-HBF" {
			t.Error("stale section reference")
		}
	}
}

func TestRelinkNoopOnSameID(t *testing.T) {
	ws := New(testState())
	if counts := ws.Relink("DE-HBF", "DE-HBF"); counts.Total() != 0 {
		t.Errorf("Total() = %d, want 0", counts.Total())
	}
	if ws.Touched() {
		t.Error("noop relink touched scopes")
	}
}

func TestUpdateOperationalPointRelinks(t *testing.T) {
	ws := New(testState())

	counts, err := ws.UpdateOperationalPoint("op1", func(op *models.OperationalPoint) error {
		op.Name = "Hauptbahnhof Neu"
		op.UniqueOpID = "DE-HBF-NEU"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateOperationalPoint: %v", err)
	}
	if counts.Total() != 5 {
		t.Errorf("Total() = %d, want 5", counts.Total())
	}
	op := ws.FindOperationalPoint("op1")
	if op.Name != "Hauptbahnhof Neu" || op.UniqueOpID != "DE-HBF-NEU" {
		t.Errorf("point after patch = %+v", op)
	}
}

func TestUpdateOperationalPointUniquenessClashReverts(t *testing.T) {
	ws := New(testState())

	_, err := ws.UpdateOperationalPoint("op1", func(op *models.OperationalPoint) error {
		op.UniqueOpID = "DE-SUD"
		return nil
	})
	if err == nil {
		t.Fatal("uniqueOpId clash accepted")
	}
	if ws.FindOperationalPoint("op1").UniqueOpID != "DE-HBF" {
		t.Error("uniqueOpId not reverted after clash")
	}
	// Dependents untouched.
	if ws.State().SectionsOfLine[0].StartUniqueOpID != "DE-HBF" {
		t.Error("dependents rewritten despite clash")
	}
}

func TestUpdateOperationalPointMissing(t *testing.T) {
	ws := New(testState())
	_, err := ws.UpdateOperationalPoint("nope", func(op *models.OperationalPoint) error { return nil })
	if err == nil {
		t.Error("missing point accepted")
	}
}
