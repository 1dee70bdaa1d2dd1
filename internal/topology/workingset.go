// Package topology maintains the per-request working copy of the 8
// topology collections and the referential-integrity operations over them:
// uniqueness on create, cascading delete, and uniqueOpId relink.
package topology

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/railplan/copilot/internal/models"
)

// WorkingSet is a mutable deep copy of the topology collections, private to
// one request. All topology action resolvers mutate the working set; the
// canonical collections are only replaced at commit time via the per-scope
// bulk-replace tasks.
type WorkingSet struct {
	state   *models.TopologyState
	touched map[string]bool
}

// New deep-copies the canonical state into a fresh working set.
func New(canonical *models.TopologyState) *WorkingSet {
	return &WorkingSet{
		state:   canonical.Clone(),
		touched: make(map[string]bool),
	}
}

// State exposes the working copy for read access.
func (w *WorkingSet) State() *models.TopologyState { return w.state }

// Touch marks a scope as modified by this request.
func (w *WorkingSet) Touch(scope string) { w.touched[scope] = true }

// Touched reports whether any scope was modified.
func (w *WorkingSet) Touched() bool { return len(w.touched) > 0 }

// CommitTasks materializes the working set into one bulk-replace task per
// touched scope, in persistence order. Writing a scope twice in one request
// still yields a single task carrying the final items.
func (w *WorkingSet) CommitTasks() []models.CommitTask {
	var tasks []models.CommitTask
	for _, scope := range models.TopologyScopes {
		if !w.touched[scope] {
			continue
		}
		tasks = append(tasks, models.CommitTask{
			Kind:  models.TaskReplaceTopologyScope,
			Scope: scope,
			Items: w.state.Items(scope),
		})
	}
	return tasks
}

// NewID generates an identifier for entities the caller did not name.
func NewID() string { return uuid.New().String() }

// FindOperationalPoint returns the point with the given opId, or nil.
func (w *WorkingSet) FindOperationalPoint(opID string) *models.OperationalPoint {
	for i := range w.state.OperationalPoints {
		if w.state.OperationalPoints[i].OpID == opID {
			return &w.state.OperationalPoints[i]
		}
	}
	return nil
}

// AddOperationalPoint inserts a point after checking both identifier
// spaces. A generated opId is written back through the pointer so callers
// can report it.
func (w *WorkingSet) AddOperationalPoint(op *models.OperationalPoint) error {
	if op.OpID == "" {
		op.OpID = NewID()
	}
	if op.UniqueOpID == "" {
		return fmt.Errorf("uniqueOpId is required")
	}
	for i := range w.state.OperationalPoints {
		existing := &w.state.OperationalPoints[i]
		if existing.OpID == op.OpID {
			return fmt.Errorf("operational point with opId %q already exists", op.OpID)
		}
		if existing.UniqueOpID == op.UniqueOpID {
			return fmt.Errorf("operational point with uniqueOpId %q already exists", op.UniqueOpID)
		}
	}
	w.state.OperationalPoints = append(w.state.OperationalPoints, *op)
	w.Touch(models.ScopeOperationalPoints)
	return nil
}

// FindSection returns the section with the given solId, or nil.
func (w *WorkingSet) FindSection(solID string) *models.SectionOfLine {
	for i := range w.state.SectionsOfLine {
		if w.state.SectionsOfLine[i].SolID == solID {
			return &w.state.SectionsOfLine[i]
		}
	}
	return nil
}

// AddSection inserts a section of line. Endpoints must name existing
// operational points and must differ.
func (w *WorkingSet) AddSection(sol *models.SectionOfLine) error {
	if sol.SolID == "" {
		sol.SolID = NewID()
	}
	if w.FindSection(sol.SolID) != nil {
		return fmt.Errorf("section of line %q already exists", sol.SolID)
	}
	if sol.StartUniqueOpID == sol.EndUniqueOpID {
		return fmt.Errorf("section endpoints must differ")
	}
	for _, uid := range []string{sol.StartUniqueOpID, sol.EndUniqueOpID} {
		if !w.hasUniqueOpID(uid) {
			return fmt.Errorf("operational point %q not found", uid)
		}
	}
	w.state.SectionsOfLine = append(w.state.SectionsOfLine, *sol)
	w.Touch(models.ScopeSectionsOfLine)
	return nil
}

// FindSite returns the personnel site with the given siteId, or nil.
func (w *WorkingSet) FindSite(siteID string) *models.PersonnelSite {
	for i := range w.state.PersonnelSites {
		if w.state.PersonnelSites[i].SiteID == siteID {
			return &w.state.PersonnelSites[i]
		}
	}
	return nil
}

// AddSite inserts a personnel site. A non-empty uniqueOpId anchor must
// reference an existing operational point.
func (w *WorkingSet) AddSite(site *models.PersonnelSite) error {
	if site.SiteID == "" {
		site.SiteID = NewID()
	}
	if w.FindSite(site.SiteID) != nil {
		return fmt.Errorf("personnel site %q already exists", site.SiteID)
	}
	if site.UniqueOpID != "" && !w.hasUniqueOpID(site.UniqueOpID) {
		return fmt.Errorf("operational point %q not found", site.UniqueOpID)
	}
	w.state.PersonnelSites = append(w.state.PersonnelSites, *site)
	w.Touch(models.ScopePersonnelSites)
	return nil
}

// FindStop returns the replacement stop with the given id, or nil.
func (w *WorkingSet) FindStop(stopID string) *models.ReplacementStop {
	for i := range w.state.ReplacementStops {
		if w.state.ReplacementStops[i].ReplacementStopID == stopID {
			return &w.state.ReplacementStops[i]
		}
	}
	return nil
}

// AddStop inserts a replacement stop.
func (w *WorkingSet) AddStop(stop *models.ReplacementStop) error {
	if stop.ReplacementStopID == "" {
		stop.ReplacementStopID = NewID()
	}
	if w.FindStop(stop.ReplacementStopID) != nil {
		return fmt.Errorf("replacement stop %q already exists", stop.ReplacementStopID)
	}
	if stop.NearestUniqueOpID != "" && !w.hasUniqueOpID(stop.NearestUniqueOpID) {
		return fmt.Errorf("operational point %q not found", stop.NearestUniqueOpID)
	}
	w.state.ReplacementStops = append(w.state.ReplacementStops, *stop)
	w.Touch(models.ScopeReplacementStops)
	return nil
}

// FindRoute returns the replacement route with the given id, or nil.
func (w *WorkingSet) FindRoute(routeID string) *models.ReplacementRoute {
	for i := range w.state.ReplacementRoutes {
		if w.state.ReplacementRoutes[i].ReplacementRouteID == routeID {
			return &w.state.ReplacementRoutes[i]
		}
	}
	return nil
}

// AddRoute inserts a replacement route.
func (w *WorkingSet) AddRoute(route *models.ReplacementRoute) error {
	if route.ReplacementRouteID == "" {
		route.ReplacementRouteID = NewID()
	}
	if w.FindRoute(route.ReplacementRouteID) != nil {
		return fmt.Errorf("replacement route %q already exists", route.ReplacementRouteID)
	}
	w.state.ReplacementRoutes = append(w.state.ReplacementRoutes, *route)
	w.Touch(models.ScopeReplacementRoutes)
	return nil
}

// AddEdge inserts a replacement edge. The (route, seq) pair must be free
// and both stops and the route must exist.
func (w *WorkingSet) AddEdge(edge *models.ReplacementEdge) error {
	if edge.ReplacementEdgeID == "" {
		edge.ReplacementEdgeID = NewID()
	}
	if w.FindRoute(edge.ReplacementRouteID) == nil {
		return fmt.Errorf("replacement route %q not found", edge.ReplacementRouteID)
	}
	for _, stopID := range []string{edge.FromStopID, edge.ToStopID} {
		if w.FindStop(stopID) == nil {
			return fmt.Errorf("replacement stop %q not found", stopID)
		}
	}
	for i := range w.state.ReplacementEdges {
		existing := &w.state.ReplacementEdges[i]
		if existing.ReplacementEdgeID == edge.ReplacementEdgeID {
			return fmt.Errorf("replacement edge %q already exists", edge.ReplacementEdgeID)
		}
		if existing.ReplacementRouteID == edge.ReplacementRouteID && existing.Seq == edge.Seq {
			return fmt.Errorf("route %q already has an edge at seq %d", edge.ReplacementRouteID, edge.Seq)
		}
	}
	w.state.ReplacementEdges = append(w.state.ReplacementEdges, *edge)
	w.Touch(models.ScopeReplacementEdges)
	return nil
}

// AddStopLink inserts an op/replacement-stop cross-link. The (op, stop)
// pair must be free and both endpoints must exist.
func (w *WorkingSet) AddStopLink(link *models.OpReplacementStopLink) error {
	if link.LinkID == "" {
		link.LinkID = NewID()
	}
	if !w.hasUniqueOpID(link.UniqueOpID) {
		return fmt.Errorf("operational point %q not found", link.UniqueOpID)
	}
	if w.FindStop(link.ReplacementStopID) == nil {
		return fmt.Errorf("replacement stop %q not found", link.ReplacementStopID)
	}
	for i := range w.state.StopLinks {
		existing := &w.state.StopLinks[i]
		if existing.LinkID == link.LinkID {
			return fmt.Errorf("stop link %q already exists", link.LinkID)
		}
		if existing.UniqueOpID == link.UniqueOpID && existing.ReplacementStopID == link.ReplacementStopID {
			return fmt.Errorf("link between %q and %q already exists", link.UniqueOpID, link.ReplacementStopID)
		}
	}
	w.state.StopLinks = append(w.state.StopLinks, *link)
	w.Touch(models.ScopeStopLinks)
	return nil
}

// AddTransferEdge inserts a transfer edge. Self-edges are rejected and
// both nodes must reference existing entities.
func (w *WorkingSet) AddTransferEdge(edge *models.TransferEdge) error {
	if edge.TransferID == "" {
		edge.TransferID = NewID()
	}
	if edge.From == edge.To {
		return fmt.Errorf("transfer edge must not connect a node to itself")
	}
	for _, node := range []models.TransferNode{edge.From, edge.To} {
		if err := w.checkTransferNode(node); err != nil {
			return err
		}
	}
	for i := range w.state.TransferEdges {
		if w.state.TransferEdges[i].TransferID == edge.TransferID {
			return fmt.Errorf("transfer edge %q already exists", edge.TransferID)
		}
	}
	w.state.TransferEdges = append(w.state.TransferEdges, *edge)
	w.Touch(models.ScopeTransferEdges)
	return nil
}

func (w *WorkingSet) checkTransferNode(node models.TransferNode) error {
	switch node.Kind {
	case models.TransferNodeOP:
		if !w.hasUniqueOpID(node.Ref) {
			return fmt.Errorf("operational point %q not found", node.Ref)
		}
	case models.TransferNodePersonnelSite:
		if w.FindSite(node.Ref) == nil {
			return fmt.Errorf("personnel site %q not found", node.Ref)
		}
	case models.TransferNodeReplacementStop:
		if w.FindStop(node.Ref) == nil {
			return fmt.Errorf("replacement stop %q not found", node.Ref)
		}
	default:
		return fmt.Errorf("unknown transfer node kind %q", node.Kind)
	}
	return nil
}

func (w *WorkingSet) hasUniqueOpID(uid string) bool {
	for i := range w.state.OperationalPoints {
		if w.state.OperationalPoints[i].UniqueOpID == uid {
			return true
		}
	}
	return false
}
