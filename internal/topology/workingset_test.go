package topology

import (
	"testing"

	"github.com/railplan/copilot/internal/models"
)

func testState() *models.TopologyState {
	return &models.TopologyState{
		OperationalPoints: []models.OperationalPoint{
			{OpID: "op1", UniqueOpID: "DE-HBF", Name: "Hauptbahnhof"},
			{OpID: "op2", UniqueOpID: "DE-SUD", Name: "Südkreuz"},
		},
		SectionsOfLine: []models.SectionOfLine{
			{SolID: "sol1", StartUniqueOpID: "DE-HBF", EndUniqueOpID: "DE-SUD"},
		},
		PersonnelSites: []models.PersonnelSite{
			{SiteID: "site1", Name: "Crew Base", UniqueOpID: "DE-HBF"},
		},
		ReplacementStops: []models.ReplacementStop{
			{ReplacementStopID: "stop1", Name: "Bus HBF", NearestUniqueOpID: "DE-HBF"},
			{ReplacementStopID: "stop2", Name: "Bus Süd", NearestUniqueOpID: "DE-SUD"},
		},
		ReplacementRoutes: []models.ReplacementRoute{
			{ReplacementRouteID: "route1", Name: "SEV 1"},
		},
		ReplacementEdges: []models.ReplacementEdge{
			{ReplacementEdgeID: "edge1", ReplacementRouteID: "route1", FromStopID: "stop1", ToStopID: "stop2", Seq: 1},
		},
		StopLinks: []models.OpReplacementStopLink{
			{LinkID: "link1", UniqueOpID: "DE-HBF", ReplacementStopID: "stop1"},
		},
		TransferEdges: []models.TransferEdge{
			{
				TransferID: "tr1",
				From:       models.TransferNode{Kind: models.TransferNodeOP, Ref: "DE-HBF"},
				To:         models.TransferNode{Kind: models.TransferNodeReplacementStop, Ref: "stop1"},
			},
		},
	}
}

func TestNewIsolatesCanonicalState(t *testing.T) {
	canonical := testState()
	ws := New(canonical)
	ws.FindOperationalPoint("op1").Name = "renamed"
	if canonical.OperationalPoints[0].Name != "Hauptbahnhof" {
		t.Error("working set mutation leaked into canonical state")
	}
}

func TestAddOperationalPointUniqueness(t *testing.T) {
	ws := New(testState())

	if err := ws.AddOperationalPoint(&models.OperationalPoint{UniqueOpID: "DE-HBF"}); err == nil {
		t.Error("duplicate uniqueOpId accepted")
	}
	if err := ws.AddOperationalPoint(&models.OperationalPoint{OpID: "op1", UniqueOpID: "DE-NEU"}); err == nil {
		t.Error("duplicate opId accepted")
	}
	if err := ws.AddOperationalPoint(&models.OperationalPoint{Name: "Neu"}); err == nil {
		t.Error("missing uniqueOpId accepted")
	}
	op := models.OperationalPoint{UniqueOpID: "DE-NEU", Name: "Neu"}
	if err := ws.AddOperationalPoint(&op); err != nil {
		t.Fatalf("valid point rejected: %v", err)
	}
	if op.OpID == "" {
		t.Error("generated opId not written back")
	}
	if ws.FindOperationalPoint("op1") == nil {
		t.Error("existing point lost")
	}
}

func TestAddWritesGeneratedIDsBack(t *testing.T) {
	ws := New(testState())

	sol := models.SectionOfLine{StartUniqueOpID: "DE-SUD", EndUniqueOpID: "DE-HBF"}
	if err := ws.AddSection(&sol); err != nil {
		t.Fatal(err)
	}
	if sol.SolID == "" || ws.FindSection(sol.SolID) == nil {
		t.Errorf("section id %q not generated or not stored", sol.SolID)
	}

	stop := models.ReplacementStop{Name: "Bus Ost"}
	if err := ws.AddStop(&stop); err != nil {
		t.Fatal(err)
	}
	if stop.ReplacementStopID == "" || ws.FindStop(stop.ReplacementStopID) == nil {
		t.Errorf("stop id %q not generated or not stored", stop.ReplacementStopID)
	}

	route := models.ReplacementRoute{Name: "SEV 2"}
	if err := ws.AddRoute(&route); err != nil {
		t.Fatal(err)
	}
	if route.ReplacementRouteID == "" || ws.FindRoute(route.ReplacementRouteID) == nil {
		t.Errorf("route id %q not generated or not stored", route.ReplacementRouteID)
	}

	link := models.OpReplacementStopLink{UniqueOpID: "DE-SUD", ReplacementStopID: "stop1"}
	if err := ws.AddStopLink(&link); err != nil {
		t.Fatal(err)
	}
	if link.LinkID == "" {
		t.Error("stop link id not generated")
	}
}

func TestAddSectionChecksEndpoints(t *testing.T) {
	ws := New(testState())

	if err := ws.AddSection(&models.SectionOfLine{StartUniqueOpID: "DE-HBF", EndUniqueOpID: "DE-HBF"}); err == nil {
		t.Error("self-referencing section accepted")
	}
	if err := ws.AddSection(&models.SectionOfLine{StartUniqueOpID: "DE-HBF", EndUniqueOpID: "DE-MISSING"}); err == nil {
		t.Error("section with unknown endpoint accepted")
	}
	if err := ws.AddSection(&models.SectionOfLine{StartUniqueOpID: "DE-SUD", EndUniqueOpID: "DE-HBF"}); err != nil {
		t.Fatalf("valid section rejected: %v", err)
	}
}

func TestAddEdgeRejectsDuplicateSeq(t *testing.T) {
	ws := New(testState())

	err := ws.AddEdge(&models.ReplacementEdge{
		ReplacementRouteID: "route1", FromStopID: "stop2", ToStopID: "stop1", Seq: 1,
	})
	if err == nil {
		t.Error("duplicate (route, seq) accepted")
	}
	edge := models.ReplacementEdge{
		ReplacementRouteID: "route1", FromStopID: "stop2", ToStopID: "stop1", Seq: 2,
	}
	if err := ws.AddEdge(&edge); err != nil {
		t.Fatalf("valid edge rejected: %v", err)
	}
	if edge.ReplacementEdgeID == "" {
		t.Error("generated edge id not written back")
	}
}

func TestAddTransferEdgeValidation(t *testing.T) {
	ws := New(testState())

	self := models.TransferNode{Kind: models.TransferNodeOP, Ref: "DE-HBF"}
	if err := ws.AddTransferEdge(&models.TransferEdge{From: self, To: self}); err == nil {
		t.Error("self transfer edge accepted")
	}
	err := ws.AddTransferEdge(&models.TransferEdge{
		From: models.TransferNode{Kind: models.TransferNodePersonnelSite, Ref: "nope"},
		To:   self,
	})
	if err == nil {
		t.Error("transfer edge with unknown site accepted")
	}
	err = ws.AddTransferEdge(&models.TransferEdge{
		From: models.TransferNode{Kind: "PLANET", Ref: "mars"},
		To:   self,
	})
	if err == nil {
		t.Error("unknown node kind accepted")
	}
	tr := models.TransferEdge{
		From: models.TransferNode{Kind: models.TransferNodePersonnelSite, Ref: "site1"},
		To:   models.TransferNode{Kind: models.TransferNodeReplacementStop, Ref: "stop2"},
	}
	if err := ws.AddTransferEdge(&tr); err != nil {
		t.Fatalf("valid transfer edge rejected: %v", err)
	}
	if tr.TransferID == "" {
		t.Error("generated transfer id not written back")
	}
}

func TestCommitTasksOnePerTouchedScope(t *testing.T) {
	ws := New(testState())
	if tasks := ws.CommitTasks(); len(tasks) != 0 {
		t.Fatalf("untouched working set produced %d tasks", len(tasks))
	}

	// Two writes to the same scope plus one to another.
	if err := ws.AddStop(&models.ReplacementStop{Name: "Bus Ost"}); err != nil {
		t.Fatal(err)
	}
	if err := ws.AddStop(&models.ReplacementStop{Name: "Bus West"}); err != nil {
		t.Fatal(err)
	}
	if err := ws.AddRoute(&models.ReplacementRoute{Name: "SEV 2"}); err != nil {
		t.Fatal(err)
	}

	tasks := ws.CommitTasks()
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	// Persistence order: stops before routes.
	if tasks[0].Scope != models.ScopeReplacementStops || tasks[1].Scope != models.ScopeReplacementRoutes {
		t.Errorf("task order = %s, %s", tasks[0].Scope, tasks[1].Scope)
	}
	stops, ok := tasks[0].Items.([]models.ReplacementStop)
	if !ok {
		t.Fatalf("stop task items have type %T", tasks[0].Items)
	}
	if len(stops) != 4 {
		t.Errorf("stop task carries %d items, want 4", len(stops))
	}
	for _, task := range tasks {
		if task.Kind != models.TaskReplaceTopologyScope {
			t.Errorf("task kind = %s", task.Kind)
		}
	}
}
