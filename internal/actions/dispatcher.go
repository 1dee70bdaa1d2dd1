package actions

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/models"
)

// RolePolicy decides whether a role may execute an action kind.
type RolePolicy interface {
	IsAllowed(action, role string) bool
}

// ResolverFunc validates one payload against the snapshot and produces an
// outcome. Resolvers never mutate the snapshot they receive; an applied
// outcome carries a fresh copy.
type ResolverFunc func(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome

// Dispatcher routes payloads to per-kind resolvers and drives batches.
type Dispatcher struct {
	policy    RolePolicy
	log       *logrus.Logger
	resolvers map[string]ResolverFunc
}

// NewDispatcher creates a dispatcher with all action kinds registered.
func NewDispatcher(policy RolePolicy, log *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		policy:    policy,
		log:       log,
		resolvers: make(map[string]ResolverFunc),
	}
	d.registerPoolActions()
	d.registerMasterDataActions()
	d.registerPlanningActions()
	d.registerTopologyActions()
	return d
}

// Apply dispatches a payload and, on success, folds the topology working
// set into per-scope commit tasks and derives refresh hints. This is the
// only entry point; batch sub-actions go through dispatch so topology tasks
// are emitted exactly once per request.
func (d *Dispatcher) Apply(c *Context, payload models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	out := d.dispatch(c, payload, snap)
	if out.Kind != models.OutcomeApplied {
		return out
	}
	if c.TopologyTouched() {
		out.CommitTasks = append(out.CommitTasks, c.Topology().CommitTasks()...)
	}
	out.RefreshHints = deriveHints(out)
	return out
}

func (d *Dispatcher) dispatch(c *Context, payload models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	action := payload.Action()
	if action == "" {
		return models.Feedbackf("the request did not specify an action")
	}
	if d.policy != nil && !d.policy.IsAllowed(action, c.Role) {
		d.log.WithFields(logrus.Fields{"action": action, "role": c.Role}).Warn("action rejected by role policy")
		return models.Feedbackf("action %q is not allowed for your role", action)
	}
	if action == "batch" {
		return d.applyBatch(c, payload, snap)
	}
	fn, ok := d.resolvers[action]
	if !ok {
		return models.Feedbackf("unsupported action %q", action)
	}
	return fn(c, payload, snap)
}

// applyBatch runs sub-actions in order, threading each applied snapshot
// into the next step. Any non-applied sub-outcome aborts the whole batch.
func (d *Dispatcher) applyBatch(c *Context, payload models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	subs := payload.Objects("actions")
	if len(subs) == 0 {
		return models.Feedbackf("batch contains no actions")
	}

	cur := snap
	var summaries []string
	var changes []models.Change
	var tasks []models.CommitTask
	for i, sub := range subs {
		if sub.Action() == "batch" {
			return models.Feedbackf("batches cannot be nested")
		}
		out := d.dispatch(c.pushPrefix("actions", i), sub, cur)
		if out.Kind != models.OutcomeApplied {
			return out
		}
		cur = out.Snapshot
		summaries = append(summaries, out.Summary)
		changes = append(changes, out.Changes...)
		// Simulation and timetable tasks accumulate; topology tasks are
		// emitted once by Apply from the shared working set.
		tasks = append(tasks, out.CommitTasks...)
	}

	out := models.Applied(cur, strings.Join(summaries, "; "), changes)
	out.CommitTasks = tasks
	return out
}

// entityHints maps change entity types to the UI collections that need a
// reload after commit. Topology hints are derived from tasks instead.
var entityHints = map[string]string{
	"vehicle_pool":        "vehicle-pools",
	"service_pool":        "service-pools",
	"personnel_pool":      "personnel-pools",
	"service":             "services",
	"person":              "personnel",
	"vehicle":             "vehicles",
	"vehicle_type":        "vehicle-types",
	"vehicle_composition": "vehicle-compositions",
	"home_depot":          "home-depots",
}

func deriveHints(out *models.Outcome) []string {
	set := make(map[string]bool)
	for _, ch := range out.Changes {
		if hint, ok := entityHints[ch.EntityType]; ok {
			set[hint] = true
		}
	}
	for _, task := range out.CommitTasks {
		switch task.Kind {
		case models.TaskReplaceTopologyScope:
			set["topology/"+task.Scope] = true
		case models.TaskCreateTimetableYear, models.TaskDeleteTimetableYear:
			set["timetable-years"] = true
		case models.TaskCreateSimulation, models.TaskUpdateSimulation, models.TaskDeleteSimulation:
			set["simulations"] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	hints := make([]string, 0, len(set))
	for h := range set {
		hints = append(hints, h)
	}
	sort.Strings(hints)
	return hints
}
