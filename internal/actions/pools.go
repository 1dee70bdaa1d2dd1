package actions

import (
	"github.com/google/uuid"

	"github.com/railplan/copilot/internal/models"
	"github.com/railplan/copilot/internal/resolver"
)

func newID() string { return uuid.New().String() }

func (d *Dispatcher) registerPoolActions() {
	for _, kind := range []string{models.PoolKindVehicle, models.PoolKindService, models.PoolKindPersonnel} {
		kind := kind
		d.resolvers["create_"+kind+"_pool"] = func(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
			return createPool(kind, p, snap)
		}
		d.resolvers["rename_"+kind+"_pool"] = func(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
			return renamePool(c, kind, p, snap)
		}
		d.resolvers["delete_"+kind+"_pool"] = func(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
			return deletePool(c, kind, p, snap)
		}
	}
}

func poolCandidates(snap *models.ResourceSnapshot, kind string) []resolver.Candidate {
	var cands []resolver.Candidate
	for _, pool := range snap.Pools {
		if pool.Kind != kind {
			continue
		}
		cands = append(cands, resolver.Candidate{ID: pool.ID, Label: pool.Name, System: pool.System})
	}
	return cands
}

// fieldRef extracts a reference from either a scalar field or a
// {"id": ...} / {"name": ...} object, together with the apply spec that
// addresses it for clarification write-back. at holds the path of the
// containing object relative to the top-level payload.
func fieldRef(c *Context, obj models.ActionPayload, key string, at ...any) (string, models.ApplySpec) {
	full := append(append([]any(nil), at...), key)
	if o := obj.Object(key); o != nil {
		ref := o.String("id")
		if ref == "" {
			ref = o.String("name")
		}
		return ref, c.applyAt(models.ApplyModeTarget, full...)
	}
	return obj.String(key), c.applyAt(models.ApplyModeValue, full...)
}

// targetRef extracts the mutation target reference.
func targetRef(c *Context, p models.ActionPayload, key string) (string, models.ApplySpec) {
	return fieldRef(c, p, key)
}

// resolvePoolAt resolves an optional pool reference field. present is
// false when the field is absent or empty, letting creates default to the
// system pool and updates leave the assignment unchanged.
func resolvePoolAt(c *Context, obj models.ActionPayload, snap *models.ResourceSnapshot, kind, key string, at ...any) (string, *models.Outcome, bool) {
	ref, apply := fieldRef(c, obj, key, at...)
	if ref == "" {
		return "", nil, false
	}
	id, out := resolveRef(ref, kind+" pools", poolCandidates(snap, kind), &apply, false)
	return id, out, true
}

func createPool(kind string, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a pool name is required")
	}
	want := resolver.Normalize(name)
	for _, pool := range snap.Pools {
		if pool.Kind == kind && resolver.Normalize(pool.Name) == want {
			return models.Feedbackf("a %s pool named %q already exists", kind, pool.Name)
		}
	}

	next := snap.Clone()
	pool := models.Pool{ID: newID(), Kind: kind, Name: name}
	next.Pools = append(next.Pools, pool)

	change := models.Change{Kind: models.ChangeCreate, EntityType: kind + "_pool", ID: pool.ID, Label: name}
	return models.Applied(next, "Created "+kind+" pool "+quoted(name), []models.Change{change})
}

func renamePool(c *Context, kind string, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, kind+" pools", poolCandidates(snap, kind), &apply, false)
	if out != nil {
		return out
	}
	newName := p.String("name")
	if newName == "" {
		return models.Feedbackf("a new pool name is required")
	}

	pool := snap.PoolByID(id)
	if pool.System {
		return models.Feedbackf("the %s pool cannot be renamed", pool.Name)
	}
	want := resolver.Normalize(newName)
	for _, other := range snap.Pools {
		if other.ID != id && other.Kind == kind && resolver.Normalize(other.Name) == want {
			return models.Feedbackf("a %s pool named %q already exists", kind, other.Name)
		}
	}

	next := snap.Clone()
	oldName := pool.Name
	next.PoolByID(id).Name = newName

	change := models.Change{
		Kind: models.ChangeUpdate, EntityType: kind + "_pool", ID: id, Label: newName,
		Details: map[string]any{"previousName": oldName},
	}
	return models.Applied(next, "Renamed "+kind+" pool "+quoted(oldName)+" to "+quoted(newName), []models.Change{change})
}

func deletePool(c *Context, kind string, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, kind+" pools", poolCandidates(snap, kind), &apply, false)
	if out != nil {
		return out
	}
	pool := snap.PoolByID(id)
	if pool.System {
		return models.Feedbackf("the %s pool cannot be deleted", pool.Name)
	}

	next := snap.Clone()
	systemID := models.SystemPoolID(kind)
	reassigned := 0
	switch kind {
	case models.PoolKindVehicle:
		for i := range next.Vehicles {
			if next.Vehicles[i].PoolID == id {
				next.Vehicles[i].PoolID = systemID
				reassigned++
			}
		}
	case models.PoolKindService:
		for i := range next.Services {
			if next.Services[i].PoolID == id {
				next.Services[i].PoolID = systemID
				reassigned++
			}
		}
	case models.PoolKindPersonnel:
		for i := range next.Personnel {
			if next.Personnel[i].PoolID == id {
				next.Personnel[i].PoolID = systemID
				reassigned++
			}
		}
	}
	for i := range next.Pools {
		if next.Pools[i].ID == id {
			next.Pools = append(next.Pools[:i], next.Pools[i+1:]...)
			break
		}
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: kind + "_pool", ID: id, Label: pool.Name}
	if reassigned > 0 {
		change.Details = map[string]any{"membersReassigned": reassigned}
	}
	return models.Applied(next, "Deleted "+kind+" pool "+quoted(pool.Name), []models.Change{change})
}
