package topology

import "github.com/railplan/copilot/internal/models"

// CascadeCounts reports how many dependents a cascading delete removed or
// adjusted, for the outcome summary.
type CascadeCounts struct {
	SectionsRemoved      int `json:"sectionsRemoved,omitempty"`
	SitesAdjusted        int `json:"sitesAdjusted,omitempty"`
	StopsAdjusted        int `json:"stopsAdjusted,omitempty"`
	StopLinksRemoved     int `json:"stopLinksRemoved,omitempty"`
	ReplacementEdgesRemoved int `json:"replacementEdgesRemoved,omitempty"`
	TransferEdgesRemoved int `json:"transferEdgesRemoved,omitempty"`
}

// Details renders the counts as outcome change details.
func (c CascadeCounts) Details() map[string]any {
	out := map[string]any{}
	if c.SectionsRemoved > 0 {
		out["sectionsRemoved"] = c.SectionsRemoved
	}
	if c.SitesAdjusted > 0 {
		out["sitesAdjusted"] = c.SitesAdjusted
	}
	if c.StopsAdjusted > 0 {
		out["stopsAdjusted"] = c.StopsAdjusted
	}
	if c.StopLinksRemoved > 0 {
		out["stopLinksRemoved"] = c.StopLinksRemoved
	}
	if c.ReplacementEdgesRemoved > 0 {
		out["replacementEdgesRemoved"] = c.ReplacementEdgesRemoved
	}
	if c.TransferEdgesRemoved > 0 {
		out["transferEdgesRemoved"] = c.TransferEdgesRemoved
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DeleteOperationalPoint removes the point with the given opId and cascades:
// sections referencing its uniqueOpId are removed, site/stop back-references
// are cleared (the entities stay), and stop links and transfer edges naming
// it are removed. Returns false when the point does not exist.
func (w *WorkingSet) DeleteOperationalPoint(opID string) (CascadeCounts, bool) {
	var counts CascadeCounts
	idx := -1
	for i := range w.state.OperationalPoints {
		if w.state.OperationalPoints[i].OpID == opID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return counts, false
	}
	uid := w.state.OperationalPoints[idx].UniqueOpID
	w.state.OperationalPoints = append(w.state.OperationalPoints[:idx], w.state.OperationalPoints[idx+1:]...)
	w.Touch(models.ScopeOperationalPoints)

	kept := w.state.SectionsOfLine[:0]
	for _, sol := range w.state.SectionsOfLine {
		if sol.StartUniqueOpID == uid || sol.EndUniqueOpID == uid {
			counts.SectionsRemoved++
			continue
		}
		kept = append(kept, sol)
	}
	if counts.SectionsRemoved > 0 {
		w.state.SectionsOfLine = kept
		w.Touch(models.ScopeSectionsOfLine)
	}

	for i := range w.state.PersonnelSites {
		if w.state.PersonnelSites[i].UniqueOpID == uid {
			w.state.PersonnelSites[i].UniqueOpID = ""
			counts.SitesAdjusted++
		}
	}
	if counts.SitesAdjusted > 0 {
		w.Touch(models.ScopePersonnelSites)
	}

	for i := range w.state.ReplacementStops {
		if w.state.ReplacementStops[i].NearestUniqueOpID == uid {
			w.state.ReplacementStops[i].NearestUniqueOpID = ""
			counts.StopsAdjusted++
		}
	}
	if counts.StopsAdjusted > 0 {
		w.Touch(models.ScopeReplacementStops)
	}

	counts.StopLinksRemoved = w.removeStopLinks(func(l models.OpReplacementStopLink) bool {
		return l.UniqueOpID == uid
	})
	counts.TransferEdgesRemoved = w.removeTransferEdges(models.TransferNode{Kind: models.TransferNodeOP, Ref: uid})

	return counts, true
}

// DeleteStop removes a replacement stop and cascades to replacement edges
// (either direction), stop links and transfer edges. Returns false when the
// stop does not exist.
func (w *WorkingSet) DeleteStop(stopID string) (CascadeCounts, bool) {
	var counts CascadeCounts
	idx := -1
	for i := range w.state.ReplacementStops {
		if w.state.ReplacementStops[i].ReplacementStopID == stopID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return counts, false
	}
	w.state.ReplacementStops = append(w.state.ReplacementStops[:idx], w.state.ReplacementStops[idx+1:]...)
	w.Touch(models.ScopeReplacementStops)

	counts.ReplacementEdgesRemoved = w.removeReplacementEdges(func(e models.ReplacementEdge) bool {
		return e.FromStopID == stopID || e.ToStopID == stopID
	})
	counts.StopLinksRemoved = w.removeStopLinks(func(l models.OpReplacementStopLink) bool {
		return l.ReplacementStopID == stopID
	})
	counts.TransferEdgesRemoved = w.removeTransferEdges(models.TransferNode{Kind: models.TransferNodeReplacementStop, Ref: stopID})

	return counts, true
}

// DeleteRoute removes a replacement route and its edges. Returns false when
// the route does not exist.
func (w *WorkingSet) DeleteRoute(routeID string) (CascadeCounts, bool) {
	var counts CascadeCounts
	idx := -1
	for i := range w.state.ReplacementRoutes {
		if w.state.ReplacementRoutes[i].ReplacementRouteID == routeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return counts, false
	}
	w.state.ReplacementRoutes = append(w.state.ReplacementRoutes[:idx], w.state.ReplacementRoutes[idx+1:]...)
	w.Touch(models.ScopeReplacementRoutes)

	counts.ReplacementEdgesRemoved = w.removeReplacementEdges(func(e models.ReplacementEdge) bool {
		return e.ReplacementRouteID == routeID
	})
	return counts, true
}

// DeleteSite removes a personnel site; only transfer edges cascade.
// Returns false when the site does not exist.
func (w *WorkingSet) DeleteSite(siteID string) (CascadeCounts, bool) {
	var counts CascadeCounts
	idx := -1
	for i := range w.state.PersonnelSites {
		if w.state.PersonnelSites[i].SiteID == siteID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return counts, false
	}
	w.state.PersonnelSites = append(w.state.PersonnelSites[:idx], w.state.PersonnelSites[idx+1:]...)
	w.Touch(models.ScopePersonnelSites)

	counts.TransferEdgesRemoved = w.removeTransferEdges(models.TransferNode{Kind: models.TransferNodePersonnelSite, Ref: siteID})
	return counts, true
}

// DeleteSection removes a single section of line.
func (w *WorkingSet) DeleteSection(solID string) bool {
	for i := range w.state.SectionsOfLine {
		if w.state.SectionsOfLine[i].SolID == solID {
			w.state.SectionsOfLine = append(w.state.SectionsOfLine[:i], w.state.SectionsOfLine[i+1:]...)
			w.Touch(models.ScopeSectionsOfLine)
			return true
		}
	}
	return false
}

// DeleteEdge removes a single replacement edge.
func (w *WorkingSet) DeleteEdge(edgeID string) bool {
	n := w.removeReplacementEdges(func(e models.ReplacementEdge) bool {
		return e.ReplacementEdgeID == edgeID
	})
	return n > 0
}

// DeleteStopLink removes a single cross-link.
func (w *WorkingSet) DeleteStopLink(linkID string) bool {
	n := w.removeStopLinks(func(l models.OpReplacementStopLink) bool {
		return l.LinkID == linkID
	})
	return n > 0
}

// DeleteTransferEdge removes a single transfer edge.
func (w *WorkingSet) DeleteTransferEdge(transferID string) bool {
	kept := w.state.TransferEdges[:0]
	removed := 0
	for _, e := range w.state.TransferEdges {
		if e.TransferID == transferID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return false
	}
	w.state.TransferEdges = kept
	w.Touch(models.ScopeTransferEdges)
	return true
}

func (w *WorkingSet) removeReplacementEdges(match func(models.ReplacementEdge) bool) int {
	kept := w.state.ReplacementEdges[:0]
	removed := 0
	for _, e := range w.state.ReplacementEdges {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed > 0 {
		w.state.ReplacementEdges = kept
		w.Touch(models.ScopeReplacementEdges)
	}
	return removed
}

func (w *WorkingSet) removeStopLinks(match func(models.OpReplacementStopLink) bool) int {
	kept := w.state.StopLinks[:0]
	removed := 0
	for _, l := range w.state.StopLinks {
		if match(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	if removed > 0 {
		w.state.StopLinks = kept
		w.Touch(models.ScopeStopLinks)
	}
	return removed
}

func (w *WorkingSet) removeTransferEdges(node models.TransferNode) int {
	kept := w.state.TransferEdges[:0]
	removed := 0
	for _, e := range w.state.TransferEdges {
		if e.From == node || e.To == node {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed > 0 {
		w.state.TransferEdges = kept
		w.Touch(models.ScopeTransferEdges)
	}
	return removed
}
