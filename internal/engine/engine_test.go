package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/actions"
	"github.com/railplan/copilot/internal/models"
	"github.com/railplan/copilot/internal/pending"
	"github.com/railplan/copilot/internal/store"
)

type mockExecutor struct {
	tasks []models.CommitTask
	err   error
}

func (m *mockExecutor) Execute(_ context.Context, task models.CommitTask) error {
	m.tasks = append(m.tasks, task)
	return m.err
}

type mockHub struct {
	hints [][]string
}

func (m *mockHub) Broadcast(hints []string) {
	m.hints = append(m.hints, hints)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testEngine(t *testing.T, opts Options) (*Engine, *store.ResourceStore) {
	t.Helper()
	resources := store.NewResourceStore()
	log := testLogger()
	eng := New(
		resources,
		actions.NewDispatcher(nil, log),
		pending.NewPreviewStore(15*time.Minute),
		pending.NewClarificationStore(15*time.Minute),
		log,
		opts,
	)
	return eng, resources
}

func TestPreviewCommitRoundTrip(t *testing.T) {
	hub := &mockHub{}
	eng, resources := testEngine(t, Options{Hub: hub})
	ctx := context.Background()
	id := Identity{ClientID: "c1", Role: "planner"}

	res, err := eng.Preview(ctx, id, models.ActionPayload{
		"action": "create_vehicle_pool",
		"name":   "Regio Nord",
	})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if res.Kind != ResultApplied || res.PreviewID == "" {
		t.Fatalf("preview = %+v", res)
	}
	if len(res.Changes) != 1 || res.Changes[0].Kind != models.ChangeCreate {
		t.Errorf("changes = %v", res.Changes)
	}

	// The canonical store is untouched until commit.
	snap, before := resources.Snapshot()
	if len(snap.Pools) != 3 {
		t.Fatalf("store mutated by preview: %d pools", len(snap.Pools))
	}

	commit, err := eng.Commit(ctx, id, res.PreviewID)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if commit.Hash == before {
		t.Error("commit did not move the revision hash")
	}
	snap, after := resources.Snapshot()
	if len(snap.Pools) != 4 {
		t.Errorf("pools after commit = %d, want 4", len(snap.Pools))
	}
	if commit.Hash != after {
		t.Errorf("commit hash %q != store hash %q", commit.Hash, after)
	}
	if len(hub.hints) != 1 || hub.hints[0][0] != "vehicle-pools" {
		t.Errorf("broadcast hints = %v", hub.hints)
	}

	// A preview is consumed exactly once.
	if _, err := eng.Commit(ctx, id, res.PreviewID); !errors.Is(err, models.ErrPreviewNotFound) {
		t.Errorf("second commit err = %v, want ErrPreviewNotFound", err)
	}
}

func TestCommitStaleSnapshot(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	ctx := context.Background()
	id := Identity{ClientID: "c1"}

	first, err := eng.Preview(ctx, id, models.ActionPayload{"action": "create_vehicle_pool", "name": "A"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Preview(ctx, id, models.ActionPayload{"action": "create_vehicle_pool", "name": "B"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.Commit(ctx, id, first.PreviewID); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if _, err := eng.Commit(ctx, id, second.PreviewID); !errors.Is(err, models.ErrStaleSnapshot) {
		t.Fatalf("second commit err = %v, want ErrStaleSnapshot", err)
	}
	// The losing preview is consumed by the conflict.
	if _, err := eng.Commit(ctx, id, second.PreviewID); !errors.Is(err, models.ErrPreviewNotFound) {
		t.Errorf("retry err = %v, want ErrPreviewNotFound", err)
	}
}

func TestCommitTaskFailure(t *testing.T) {
	exec := &mockExecutor{err: fmt.Errorf("planning backend down")}
	eng, _ := testEngine(t, Options{Executor: exec})
	ctx := context.Background()
	id := Identity{}

	res, err := eng.Preview(ctx, id, models.ActionPayload{"action": "create_timetable_year", "label": "2027"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultApplied {
		t.Fatalf("preview kind = %s", res.Kind)
	}

	_, err = eng.Commit(ctx, id, res.PreviewID)
	if !errors.Is(err, models.ErrCommitTaskFailed) {
		t.Fatalf("commit err = %v, want ErrCommitTaskFailed", err)
	}
	if len(exec.tasks) != 1 || exec.tasks[0].Kind != models.TaskCreateTimetableYear {
		t.Errorf("executed tasks = %v", exec.tasks)
	}
	if _, err := eng.Commit(ctx, id, res.PreviewID); !errors.Is(err, models.ErrPreviewNotFound) {
		t.Errorf("retry err = %v, want ErrPreviewNotFound", err)
	}
}

func TestCommitTopologyTask(t *testing.T) {
	eng, resources := testEngine(t, Options{})
	ctx := context.Background()
	id := Identity{}

	res, err := eng.Preview(ctx, id, models.ActionPayload{
		"action":     "create_operational_point",
		"name":       "Hauptbahnhof",
		"uniqueOpId": "DE-HBF",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultApplied {
		t.Fatalf("preview = %+v", res)
	}

	commit, err := eng.Commit(ctx, id, res.PreviewID)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	topo := resources.Topology()
	if len(topo.OperationalPoints) != 1 || topo.OperationalPoints[0].UniqueOpID != "DE-HBF" {
		t.Errorf("topology after commit = %+v", topo.OperationalPoints)
	}
	// The scope replacement recomputes the hash; the result must carry the
	// final one or the client's next preview conflicts immediately.
	if commit.Hash != resources.Hash() {
		t.Errorf("commit hash %q != store hash %q", commit.Hash, resources.Hash())
	}
}

func TestPreviewFeedback(t *testing.T) {
	eng, _ := testEngine(t, Options{})

	res, err := eng.Preview(context.Background(), Identity{}, models.ActionPayload{"action": "summon_dragon"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultFeedback || res.Feedback == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestResolveFlow(t *testing.T) {
	eng, resources := testEngine(t, Options{})
	resources.Load(&models.ResourceSnapshot{
		Pools: []models.Pool{
			{ID: "p1", Kind: models.PoolKindVehicle, Name: "Depot"},
			{ID: "p2", Kind: models.PoolKindVehicle, Name: "depot"},
		},
	}, nil)
	ctx := context.Background()
	id := Identity{ClientID: "c1"}

	res, err := eng.Preview(ctx, id, models.ActionPayload{
		"action": "rename_vehicle_pool",
		"target": "Depot",
		"name":   "Depot Nord",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultClarification || res.ResolutionID == "" {
		t.Fatalf("preview = %+v", res)
	}
	if len(res.Options) != 2 {
		t.Fatalf("options = %v", res.Options)
	}

	// An answer outside the offered options is feedback and keeps the
	// clarification open for a retry.
	bad, err := eng.Resolve(ctx, id, res.ResolutionID, "p99")
	if err != nil {
		t.Fatal(err)
	}
	if bad.Kind != ResultFeedback {
		t.Fatalf("invalid answer kind = %s", bad.Kind)
	}

	good, err := eng.Resolve(ctx, id, res.ResolutionID, "p1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if good.Kind != ResultApplied {
		t.Fatalf("resolved kind = %s, feedback %q", good.Kind, good.Feedback)
	}

	// The clarification is consumed by the successful answer.
	if _, err := eng.Resolve(ctx, id, res.ResolutionID, "p1"); !errors.Is(err, models.ErrClarificationNotFound) {
		t.Errorf("reuse err = %v, want ErrClarificationNotFound", err)
	}

	commit, err := eng.Commit(ctx, id, good.PreviewID)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	snap, _ := resources.Snapshot()
	if snap.PoolByID("p1").Name != "Depot Nord" {
		t.Errorf("pool after commit = %+v, summary %q", snap.PoolByID("p1"), commit.Summary)
	}
}

func TestResolveStaleSnapshot(t *testing.T) {
	eng, resources := testEngine(t, Options{})
	resources.Load(&models.ResourceSnapshot{
		Pools: []models.Pool{
			{ID: "p1", Kind: models.PoolKindVehicle, Name: "Depot"},
			{ID: "p2", Kind: models.PoolKindVehicle, Name: "depot"},
		},
	}, nil)
	ctx := context.Background()
	id := Identity{}

	res, err := eng.Preview(ctx, id, models.ActionPayload{
		"action": "delete_vehicle_pool",
		"target": "Depot",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultClarification {
		t.Fatalf("preview = %+v", res)
	}

	// The store moves on before the answer arrives.
	other, err := eng.Preview(ctx, id, models.ActionPayload{"action": "create_service_pool", "name": "S"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Commit(ctx, id, other.PreviewID); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.Resolve(ctx, id, res.ResolutionID, "p1"); !errors.Is(err, models.ErrStaleSnapshot) {
		t.Fatalf("resolve err = %v, want ErrStaleSnapshot", err)
	}
	if _, err := eng.Resolve(ctx, id, res.ResolutionID, "p1"); !errors.Is(err, models.ErrClarificationNotFound) {
		t.Errorf("retry err = %v, want ErrClarificationNotFound", err)
	}
}

func TestIdentityBinding(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	ctx := context.Background()
	owner := Identity{ClientID: "c1", Role: "planner"}

	res, err := eng.Preview(ctx, owner, models.ActionPayload{"action": "create_vehicle_pool", "name": "X"})
	if err != nil {
		t.Fatal(err)
	}

	stranger := Identity{ClientID: "c2", Role: "planner"}
	if _, err := eng.Commit(ctx, stranger, res.PreviewID); !errors.Is(err, models.ErrPreviewNotFound) {
		t.Errorf("stranger commit err = %v, want ErrPreviewNotFound", err)
	}
	if _, err := eng.Commit(ctx, owner, res.PreviewID); err != nil {
		t.Errorf("owner commit: %v", err)
	}
}

func TestInterpretWithoutInterpreter(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	if _, err := eng.Interpret(context.Background(), "create a pool"); err == nil {
		t.Error("Interpret without interpreter should fail")
	}
}
