package topology

import (
	"fmt"

	"github.com/railplan/copilot/internal/models"
)

// RelinkCounts reports how many denormalized copies of a uniqueOpId were
// rewritten by a relink pass.
type RelinkCounts struct {
	SectionEndpoints int `json:"sectionEndpoints,omitempty"`
	Sites            int `json:"sites,omitempty"`
	Stops            int `json:"stops,omitempty"`
	StopLinks        int `json:"stopLinks,omitempty"`
	TransferNodes    int `json:"transferNodes,omitempty"`
}

// Total returns the number of rewritten references.
func (c RelinkCounts) Total() int {
	return c.SectionEndpoints + c.Sites + c.Stops + c.StopLinks + c.TransferNodes
}

// Relink rewrites every by-value copy of oldUID to newUID across the five
// dependent collections. The operational point itself is updated by the
// caller; Relink runs in the same request so the rename is atomic within
// the working set.
func (w *WorkingSet) Relink(oldUID, newUID string) RelinkCounts {
	var counts RelinkCounts
	if oldUID == newUID {
		return counts
	}

	for i := range w.state.SectionsOfLine {
		sol := &w.state.SectionsOfLine[i]
		if sol.StartUniqueOpID == oldUID {
			sol.StartUniqueOpID = newUID
			counts.SectionEndpoints++
		}
		if sol.EndUniqueOpID == oldUID {
			sol.EndUniqueOpID = newUID
			counts.SectionEndpoints++
		}
	}
	if counts.SectionEndpoints > 0 {
		w.Touch(models.ScopeSectionsOfLine)
	}

	for i := range w.state.PersonnelSites {
		if w.state.PersonnelSites[i].UniqueOpID == oldUID {
			w.state.PersonnelSites[i].UniqueOpID = newUID
			counts.Sites++
		}
	}
	if counts.Sites > 0 {
		w.Touch(models.ScopePersonnelSites)
	}

	for i := range w.state.ReplacementStops {
		if w.state.ReplacementStops[i].NearestUniqueOpID == oldUID {
			w.state.ReplacementStops[i].NearestUniqueOpID = newUID
			counts.Stops++
		}
	}
	if counts.Stops > 0 {
		w.Touch(models.ScopeReplacementStops)
	}

	for i := range w.state.StopLinks {
		if w.state.StopLinks[i].UniqueOpID == oldUID {
			w.state.StopLinks[i].UniqueOpID = newUID
			counts.StopLinks++
		}
	}
	if counts.StopLinks > 0 {
		w.Touch(models.ScopeStopLinks)
	}

	for i := range w.state.TransferEdges {
		e := &w.state.TransferEdges[i]
		if e.From.Kind == models.TransferNodeOP && e.From.Ref == oldUID {
			e.From.Ref = newUID
			counts.TransferNodes++
		}
		if e.To.Kind == models.TransferNodeOP && e.To.Ref == oldUID {
			e.To.Ref = newUID
			counts.TransferNodes++
		}
	}
	if counts.TransferNodes > 0 {
		w.Touch(models.ScopeTransferEdges)
	}

	return counts
}

// UpdateOperationalPoint applies a patch to the point with the given opId
// and relinks dependents when the uniqueOpId changes. The patch function
// mutates the point in place and returns an error to abort.
func (w *WorkingSet) UpdateOperationalPoint(opID string, patch func(*models.OperationalPoint) error) (RelinkCounts, error) {
	var counts RelinkCounts
	op := w.FindOperationalPoint(opID)
	if op == nil {
		return counts, fmt.Errorf("operational point %q not found", opID)
	}

	oldUID := op.UniqueOpID
	if err := patch(op); err != nil {
		return counts, err
	}

	if op.UniqueOpID != oldUID {
		for i := range w.state.OperationalPoints {
			other := &w.state.OperationalPoints[i]
			if other.OpID != opID && other.UniqueOpID == op.UniqueOpID {
				op.UniqueOpID = oldUID
				return counts, fmt.Errorf("operational point with uniqueOpId %q already exists", other.UniqueOpID)
			}
		}
		counts = w.Relink(oldUID, op.UniqueOpID)
	}

	w.Touch(models.ScopeOperationalPoints)
	return counts, nil
}
