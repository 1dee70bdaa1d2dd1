package topology

import (
	"testing"

	"github.com/railplan/copilot/internal/models"
)

func TestDeleteOperationalPointCascades(t *testing.T) {
	ws := New(testState())

	counts, ok := ws.DeleteOperationalPoint("op1")
	if !ok {
		t.Fatal("DeleteOperationalPoint returned false for existing point")
	}
	if counts.SectionsRemoved != 1 {
		t.Errorf("SectionsRemoved = %d, want 1", counts.SectionsRemoved)
	}
	if counts.SitesAdjusted != 1 {
		t.Errorf("SitesAdjusted = %d, want 1", counts.SitesAdjusted)
	}
	if counts.StopsAdjusted != 1 {
		t.Errorf("StopsAdjusted = %d, want 1", counts.StopsAdjusted)
	}
	if counts.StopLinksRemoved != 1 {
		t.Errorf("StopLinksRemoved = %d, want 1", counts.StopLinksRemoved)
	}
	if counts.TransferEdgesRemoved != 1 {
		t.Errorf("TransferEdgesRemoved = %d, want 1", counts.TransferEdgesRemoved)
	}

	state := ws.State()
	if ws.FindOperationalPoint("op1") != nil {
		t.Error("point still present")
	}
	if len(state.SectionsOfLine) != 0 {
		t.Error("dependent section survived")
	}
	// Sites and stops stay, with the anchor cleared.
	if ws.FindSite("site1") == nil || ws.FindSite("site1").UniqueOpID != "" {
		t.Error("site anchor not cleared")
	}
	if ws.FindStop("stop1") == nil || ws.FindStop("stop1").NearestUniqueOpID != "" {
		t.Error("stop anchor not cleared")
	}
	if len(state.StopLinks) != 0 || len(state.TransferEdges) != 0 {
		t.Error("dangling links survived")
	}

	if _, ok := ws.DeleteOperationalPoint("op1"); ok {
		t.Error("second delete reported success")
	}
}

func TestDeleteStopCascades(t *testing.T) {
	ws := New(testState())

	counts, ok := ws.DeleteStop("stop1")
	if !ok {
		t.Fatal("DeleteStop returned false for existing stop")
	}
	if counts.ReplacementEdgesRemoved != 1 {
		t.Errorf("ReplacementEdgesRemoved = %d, want 1", counts.ReplacementEdgesRemoved)
	}
	if counts.StopLinksRemoved != 1 {
		t.Errorf("StopLinksRemoved = %d, want 1", counts.StopLinksRemoved)
	}
	if counts.TransferEdgesRemoved != 1 {
		t.Errorf("TransferEdgesRemoved = %d, want 1", counts.TransferEdgesRemoved)
	}
	// The route itself is untouched.
	if ws.FindRoute("route1") == nil {
		t.Error("route removed by stop cascade")
	}
}

func TestDeleteRouteRemovesEdges(t *testing.T) {
	ws := New(testState())

	counts, ok := ws.DeleteRoute("route1")
	if !ok {
		t.Fatal("DeleteRoute returned false for existing route")
	}
	if counts.ReplacementEdgesRemoved != 1 {
		t.Errorf("ReplacementEdgesRemoved = %d, want 1", counts.ReplacementEdgesRemoved)
	}
	if len(ws.State().ReplacementStops) != 2 {
		t.Error("stops removed by route cascade")
	}
}

func TestDeleteSiteRemovesTransferEdges(t *testing.T) {
	state := testState()
	state.TransferEdges = append(state.TransferEdges, models.TransferEdge{
		TransferID: "tr2",
		From:       models.TransferNode{Kind: models.TransferNodePersonnelSite, Ref: "site1"},
		To:         models.TransferNode{Kind: models.TransferNodeOP, Ref: "DE-SUD"},
	})
	ws := New(state)

	counts, ok := ws.DeleteSite("site1")
	if !ok {
		t.Fatal("DeleteSite returned false for existing site")
	}
	if counts.TransferEdgesRemoved != 1 {
		t.Errorf("TransferEdgesRemoved = %d, want 1", counts.TransferEdgesRemoved)
	}
	if len(ws.State().TransferEdges) != 1 {
		t.Errorf("transfer edges left = %d, want 1", len(ws.State().TransferEdges))
	}
}

func TestSingleDeletes(t *testing.T) {
	ws := New(testState())

	if !ws.DeleteSection("sol1") {
		t.Error("DeleteSection failed")
	}
	if !ws.DeleteEdge("edge1") {
		t.Error("DeleteEdge failed")
	}
	if !ws.DeleteStopLink("link1") {
		t.Error("DeleteStopLink failed")
	}
	if !ws.DeleteTransferEdge("tr1") {
		t.Error("DeleteTransferEdge failed")
	}
	if ws.DeleteSection("sol1") || ws.DeleteEdge("edge1") || ws.DeleteStopLink("link1") || ws.DeleteTransferEdge("tr1") {
		t.Error("repeated delete reported success")
	}
}

func TestCascadeCountsDetails(t *testing.T) {
	if d := (CascadeCounts{}).Details(); d != nil {
		t.Errorf("empty counts rendered %v", d)
	}
	d := CascadeCounts{SectionsRemoved: 2, StopLinksRemoved: 1}.Details()
	if d["sectionsRemoved"] != 2 || d["stopLinksRemoved"] != 1 {
		t.Errorf("details = %v", d)
	}
	if _, ok := d["sitesAdjusted"]; ok {
		t.Error("zero count rendered")
	}
}
