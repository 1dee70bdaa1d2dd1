package actions

import (
	"github.com/railplan/copilot/internal/models"
	"github.com/railplan/copilot/internal/resolver"
)

func (d *Dispatcher) registerFleetActions() {
	d.resolvers["create_vehicle_type"] = createVehicleType
	d.resolvers["update_vehicle_type"] = updateVehicleType
	d.resolvers["delete_vehicle_type"] = deleteVehicleType
	d.resolvers["create_vehicle_composition"] = createComposition
	d.resolvers["update_vehicle_composition"] = updateComposition
	d.resolvers["delete_vehicle_composition"] = deleteComposition
	d.resolvers["create_home_depot"] = createDepot
	d.resolvers["update_home_depot"] = updateDepot
	d.resolvers["delete_home_depot"] = deleteDepot
}

func compositionCandidates(snap *models.ResourceSnapshot) []resolver.Candidate {
	cands := make([]resolver.Candidate, len(snap.VehicleCompositions))
	for i, comp := range snap.VehicleCompositions {
		cands[i] = resolver.Candidate{ID: comp.ID, Label: comp.Name}
	}
	return cands
}

func createVehicleType(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a vehicle type name is required")
	}
	want := resolver.Normalize(name)
	for _, vt := range snap.VehicleTypes {
		if resolver.Normalize(vt.Name) == want {
			return models.Feedbackf("a vehicle type named %q already exists", vt.Name)
		}
	}

	next := snap.Clone()
	vt := models.VehicleType{ID: newID(), Name: name}
	if capacity, ok := p.Int("capacity"); ok && capacity > 0 {
		vt.Capacity = capacity
	}
	next.VehicleTypes = append(next.VehicleTypes, vt)

	change := models.Change{Kind: models.ChangeCreate, EntityType: "vehicle_type", ID: vt.ID, Label: name}
	return models.Applied(next, "Created vehicle type "+quoted(name), []models.Change{change})
}

func updateVehicleType(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "vehicle types", vehicleTypeCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	patch, _ := patchObject(p)

	next := snap.Clone()
	var vt *models.VehicleType
	for i := range next.VehicleTypes {
		if next.VehicleTypes[i].ID == id {
			vt = &next.VehicleTypes[i]
		}
	}
	if name := patch.String("name"); name != "" {
		vt.Name = name
	}
	if capacity, ok := patch.Int("capacity"); ok && capacity > 0 {
		vt.Capacity = capacity
	}

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "vehicle_type", ID: id, Label: vt.Name}
	return models.Applied(next, "Updated vehicle type "+quoted(vt.Name), []models.Change{change})
}

func deleteVehicleType(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "vehicle types", vehicleTypeCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	for _, v := range snap.Vehicles {
		if v.VehicleTypeID == id {
			return models.Feedbackf("vehicle type is still assigned to vehicle %q", v.VehicleNumber)
		}
	}
	for _, comp := range snap.VehicleCompositions {
		for _, typeID := range comp.VehicleTypeIDs {
			if typeID == id {
				return models.Feedbackf("vehicle type is still used by composition %q", comp.Name)
			}
		}
	}

	next := snap.Clone()
	var label string
	for i := range next.VehicleTypes {
		if next.VehicleTypes[i].ID == id {
			label = next.VehicleTypes[i].Name
			next.VehicleTypes = append(next.VehicleTypes[:i], next.VehicleTypes[i+1:]...)
			break
		}
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "vehicle_type", ID: id, Label: label}
	return models.Applied(next, "Deleted vehicle type "+quoted(label), []models.Change{change})
}

func createComposition(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a composition name is required")
	}
	refs := p.Array("vehicleTypes")
	if len(refs) == 0 {
		return models.Feedbackf("a composition needs at least one vehicle type")
	}

	typeIDs := make([]string, 0, len(refs))
	for i, raw := range refs {
		ref, ok := raw.(string)
		if !ok || ref == "" {
			return models.Feedbackf("vehicleTypes[%d] is not a valid reference", i)
		}
		apply := c.applyAt(models.ApplyModeValue, "vehicleTypes", i)
		typeID, out := resolveRef(ref, "vehicle types", vehicleTypeCandidates(snap), &apply, false)
		if out != nil {
			return out
		}
		typeIDs = append(typeIDs, typeID)
	}

	next := snap.Clone()
	comp := models.VehicleComposition{ID: newID(), Name: name, VehicleTypeIDs: typeIDs}
	next.VehicleCompositions = append(next.VehicleCompositions, comp)

	change := models.Change{
		Kind: models.ChangeCreate, EntityType: "vehicle_composition", ID: comp.ID, Label: name,
		Details: map[string]any{"vehicleTypeCount": len(typeIDs)},
	}
	return models.Applied(next, "Created vehicle composition "+quoted(name), []models.Change{change})
}

func updateComposition(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "vehicle compositions", compositionCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	patch, at := patchObject(p)

	var typeIDs []string
	if refs := patch.Array("vehicleTypes"); refs != nil {
		if len(refs) == 0 {
			return models.Feedbackf("a composition needs at least one vehicle type")
		}
		typeIDs = make([]string, 0, len(refs))
		for i, raw := range refs {
			typeRef, ok := raw.(string)
			if !ok || typeRef == "" {
				return models.Feedbackf("vehicleTypes[%d] is not a valid reference", i)
			}
			path := append(append([]any(nil), at...), "vehicleTypes", i)
			typeApply := c.applyAt(models.ApplyModeValue, path...)
			typeID, out := resolveRef(typeRef, "vehicle types", vehicleTypeCandidates(snap), &typeApply, false)
			if out != nil {
				return out
			}
			typeIDs = append(typeIDs, typeID)
		}
	}

	next := snap.Clone()
	var comp *models.VehicleComposition
	for i := range next.VehicleCompositions {
		if next.VehicleCompositions[i].ID == id {
			comp = &next.VehicleCompositions[i]
		}
	}
	if name := patch.String("name"); name != "" {
		comp.Name = name
	}
	if typeIDs != nil {
		comp.VehicleTypeIDs = typeIDs
	}

	change := models.Change{
		Kind: models.ChangeUpdate, EntityType: "vehicle_composition", ID: id, Label: comp.Name,
		Details: map[string]any{"vehicleTypeCount": len(comp.VehicleTypeIDs)},
	}
	return models.Applied(next, "Updated vehicle composition "+quoted(comp.Name), []models.Change{change})
}

func deleteComposition(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "vehicle compositions", compositionCandidates(snap), &apply, false)
	if out != nil {
		return out
	}

	next := snap.Clone()
	var label string
	for i := range next.VehicleCompositions {
		if next.VehicleCompositions[i].ID == id {
			label = next.VehicleCompositions[i].Name
			next.VehicleCompositions = append(next.VehicleCompositions[:i], next.VehicleCompositions[i+1:]...)
			break
		}
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "vehicle_composition", ID: id, Label: label}
	return models.Applied(next, "Deleted vehicle composition "+quoted(label), []models.Change{change})
}

func createDepot(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a depot name is required")
	}
	want := resolver.Normalize(name)
	for _, dep := range snap.HomeDepots {
		if resolver.Normalize(dep.Name) == want {
			return models.Feedbackf("a home depot named %q already exists", dep.Name)
		}
	}
	var opUID string
	if ref, apply := fieldRef(c, p, "operationalPoint"); ref != "" {
		uid, out := resolveOpRef(c, ref, &apply)
		if out != nil {
			return out
		}
		opUID = uid
	}

	next := snap.Clone()
	dep := models.HomeDepot{ID: newID(), Name: name, UniqueOpID: opUID}
	next.HomeDepots = append(next.HomeDepots, dep)

	change := models.Change{Kind: models.ChangeCreate, EntityType: "home_depot", ID: dep.ID, Label: name}
	return models.Applied(next, "Created home depot "+quoted(name), []models.Change{change})
}

func updateDepot(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "home depots", depotCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	patch, at := patchObject(p)

	next := snap.Clone()
	var dep *models.HomeDepot
	for i := range next.HomeDepots {
		if next.HomeDepots[i].ID == id {
			dep = &next.HomeDepots[i]
		}
	}
	if name := patch.String("name"); name != "" {
		dep.Name = name
	}
	if opRef, opApply := fieldRef(c, patch, "operationalPoint", at...); opRef != "" {
		uid, out := resolveOpRef(c, opRef, &opApply)
		if out != nil {
			return out
		}
		dep.UniqueOpID = uid
	}

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "home_depot", ID: id, Label: dep.Name}
	return models.Applied(next, "Updated home depot "+quoted(dep.Name), []models.Change{change})
}

func deleteDepot(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "home depots", depotCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	for _, v := range snap.Vehicles {
		if v.HomeDepotID == id {
			return models.Feedbackf("home depot is still assigned to vehicle %q", v.VehicleNumber)
		}
	}

	next := snap.Clone()
	var label string
	for i := range next.HomeDepots {
		if next.HomeDepots[i].ID == id {
			label = next.HomeDepots[i].Name
			next.HomeDepots = append(next.HomeDepots[:i], next.HomeDepots[i+1:]...)
			break
		}
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "home_depot", ID: id, Label: label}
	return models.Applied(next, "Deleted home depot "+quoted(label), []models.Change{change})
}
