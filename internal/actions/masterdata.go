package actions

import (
	"github.com/railplan/copilot/internal/models"
	"github.com/railplan/copilot/internal/resolver"
)

func (d *Dispatcher) registerMasterDataActions() {
	d.resolvers["create_service"] = createService
	d.resolvers["update_service"] = updateService
	d.resolvers["delete_service"] = deleteService
	d.resolvers["create_person"] = createPerson
	d.resolvers["update_person"] = updatePerson
	d.resolvers["delete_person"] = deletePerson
	d.resolvers["create_vehicle"] = createVehicle
	d.resolvers["update_vehicle"] = updateVehicle
	d.resolvers["delete_vehicle"] = deleteVehicle
	d.registerFleetActions()
}

// patchObject returns the object holding update fields: the "patch" object
// when present, otherwise the payload itself. The second return value is
// the payload path of that object, for clarification apply specs.
func patchObject(p models.ActionPayload) (models.ActionPayload, []any) {
	if obj := p.Object("patch"); obj != nil {
		return obj, []any{"patch"}
	}
	return p, nil
}

func serviceCandidates(snap *models.ResourceSnapshot) []resolver.Candidate {
	cands := make([]resolver.Candidate, len(snap.Services))
	for i, svc := range snap.Services {
		cands[i] = resolver.Candidate{ID: svc.ID, Label: svc.Name}
	}
	return cands
}

func personCandidates(snap *models.ResourceSnapshot) []resolver.Candidate {
	cands := make([]resolver.Candidate, len(snap.Personnel))
	for i, per := range snap.Personnel {
		cands[i] = resolver.Candidate{ID: per.ID, Label: per.FullName(), Alias: per.PersonnelNumber}
	}
	return cands
}

func vehicleCandidates(snap *models.ResourceSnapshot) []resolver.Candidate {
	cands := make([]resolver.Candidate, len(snap.Vehicles))
	for i, v := range snap.Vehicles {
		cands[i] = resolver.Candidate{ID: v.ID, Label: v.VehicleNumber}
	}
	return cands
}

func vehicleTypeCandidates(snap *models.ResourceSnapshot) []resolver.Candidate {
	cands := make([]resolver.Candidate, len(snap.VehicleTypes))
	for i, vt := range snap.VehicleTypes {
		cands[i] = resolver.Candidate{ID: vt.ID, Label: vt.Name}
	}
	return cands
}

func depotCandidates(snap *models.ResourceSnapshot) []resolver.Candidate {
	cands := make([]resolver.Candidate, len(snap.HomeDepots))
	for i, dep := range snap.HomeDepots {
		cands[i] = resolver.Candidate{ID: dep.ID, Label: dep.Name}
	}
	return cands
}

func siteCandidates(c *Context) []resolver.Candidate {
	sites := c.Topology().State().PersonnelSites
	cands := make([]resolver.Candidate, len(sites))
	for i, s := range sites {
		cands[i] = resolver.Candidate{ID: s.SiteID, Label: s.Name}
	}
	return cands
}

func createService(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a service name is required")
	}
	poolID, out, present := resolvePoolAt(c, p, snap, models.PoolKindService, "pool")
	if out != nil {
		return out
	}
	if !present {
		poolID = models.SystemPoolID(models.PoolKindService)
	}

	next := snap.Clone()
	svc := models.Service{ID: newID(), Name: name, PoolID: poolID}
	next.Services = append(next.Services, svc)

	change := models.Change{Kind: models.ChangeCreate, EntityType: "service", ID: svc.ID, Label: name}
	return models.Applied(next, "Created service "+quoted(name), []models.Change{change})
}

func updateService(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "services", serviceCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	patch, at := patchObject(p)

	next := snap.Clone()
	var svc *models.Service
	for i := range next.Services {
		if next.Services[i].ID == id {
			svc = &next.Services[i]
		}
	}
	details := map[string]any{}
	if name := patch.String("name"); name != "" && name != svc.Name {
		details["previousName"] = svc.Name
		svc.Name = name
	}
	if poolID, out, present := resolvePoolAt(c, patch, snap, models.PoolKindService, "pool", at...); out != nil {
		return out
	} else if present {
		svc.PoolID = poolID
	}
	if len(details) == 0 {
		details = nil
	}

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "service", ID: id, Label: svc.Name, Details: details}
	return models.Applied(next, "Updated service "+quoted(svc.Name), []models.Change{change})
}

func deleteService(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "services", serviceCandidates(snap), &apply, false)
	if out != nil {
		return out
	}

	next := snap.Clone()
	var label string
	for i := range next.Services {
		if next.Services[i].ID == id {
			label = next.Services[i].Name
			next.Services = append(next.Services[:i], next.Services[i+1:]...)
			break
		}
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "service", ID: id, Label: label}
	return models.Applied(next, "Deleted service "+quoted(label), []models.Change{change})
}

func createPerson(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	number := p.String("personnelNumber")
	lastName := p.String("lastName")
	if number == "" || lastName == "" {
		return models.Feedbackf("personnelNumber and lastName are required")
	}
	for _, per := range snap.Personnel {
		if per.PersonnelNumber == number {
			return models.Feedbackf("a person with personnel number %q already exists", number)
		}
	}
	poolID, out, present := resolvePoolAt(c, p, snap, models.PoolKindPersonnel, "pool")
	if out != nil {
		return out
	}
	if !present {
		poolID = models.SystemPoolID(models.PoolKindPersonnel)
	}
	var siteID string
	if ref, apply := fieldRef(c, p, "homeSite"); ref != "" {
		siteID, out = resolveRef(ref, "personnel sites", siteCandidates(c), &apply, false)
		if out != nil {
			return out
		}
	}

	next := snap.Clone()
	per := models.Person{
		ID:              newID(),
		PersonnelNumber: number,
		FirstName:       p.String("firstName"),
		LastName:        lastName,
		HomeSiteID:      siteID,
		PoolID:          poolID,
	}
	next.Personnel = append(next.Personnel, per)

	change := models.Change{Kind: models.ChangeCreate, EntityType: "person", ID: per.ID, Label: per.FullName()}
	return models.Applied(next, "Created person "+quoted(per.FullName()), []models.Change{change})
}

func updatePerson(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "personnel", personCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	patch, at := patchObject(p)

	next := snap.Clone()
	var per *models.Person
	for i := range next.Personnel {
		if next.Personnel[i].ID == id {
			per = &next.Personnel[i]
		}
	}
	if v := patch.String("firstName"); v != "" {
		per.FirstName = v
	}
	if v := patch.String("lastName"); v != "" {
		per.LastName = v
	}
	if siteRef, siteApply := fieldRef(c, patch, "homeSite", at...); siteRef != "" {
		siteID, out := resolveRef(siteRef, "personnel sites", siteCandidates(c), &siteApply, false)
		if out != nil {
			return out
		}
		per.HomeSiteID = siteID
	}
	if poolID, out, present := resolvePoolAt(c, patch, snap, models.PoolKindPersonnel, "pool", at...); out != nil {
		return out
	} else if present {
		per.PoolID = poolID
	}

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "person", ID: id, Label: per.FullName()}
	return models.Applied(next, "Updated person "+quoted(per.FullName()), []models.Change{change})
}

func deletePerson(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "personnel", personCandidates(snap), &apply, false)
	if out != nil {
		return out
	}

	next := snap.Clone()
	var label string
	for i := range next.Personnel {
		if next.Personnel[i].ID == id {
			label = next.Personnel[i].FullName()
			next.Personnel = append(next.Personnel[:i], next.Personnel[i+1:]...)
			break
		}
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "person", ID: id, Label: label}
	return models.Applied(next, "Deleted person "+quoted(label), []models.Change{change})
}

func createVehicle(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	number := p.String("vehicleNumber")
	if number == "" {
		return models.Feedbackf("a vehicle number is required")
	}
	for _, v := range snap.Vehicles {
		if v.VehicleNumber == number {
			return models.Feedbackf("a vehicle with number %q already exists", number)
		}
	}
	poolID, out, present := resolvePoolAt(c, p, snap, models.PoolKindVehicle, "pool")
	if out != nil {
		return out
	}
	if !present {
		poolID = models.SystemPoolID(models.PoolKindVehicle)
	}
	var typeID string
	if ref, apply := fieldRef(c, p, "vehicleType"); ref != "" {
		typeID, out = resolveRef(ref, "vehicle types", vehicleTypeCandidates(snap), &apply, false)
		if out != nil {
			return out
		}
	}
	var depotID string
	if ref, apply := fieldRef(c, p, "homeDepot"); ref != "" {
		depotID, out = resolveRef(ref, "home depots", depotCandidates(snap), &apply, false)
		if out != nil {
			return out
		}
	}

	next := snap.Clone()
	v := models.Vehicle{
		ID:            newID(),
		VehicleNumber: number,
		VehicleTypeID: typeID,
		HomeDepotID:   depotID,
		PoolID:        poolID,
	}
	next.Vehicles = append(next.Vehicles, v)

	change := models.Change{Kind: models.ChangeCreate, EntityType: "vehicle", ID: v.ID, Label: number}
	return models.Applied(next, "Created vehicle "+quoted(number), []models.Change{change})
}

func updateVehicle(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "vehicles", vehicleCandidates(snap), &apply, false)
	if out != nil {
		return out
	}
	patch, at := patchObject(p)

	next := snap.Clone()
	var v *models.Vehicle
	for i := range next.Vehicles {
		if next.Vehicles[i].ID == id {
			v = &next.Vehicles[i]
		}
	}
	if number := patch.String("vehicleNumber"); number != "" {
		for _, other := range snap.Vehicles {
			if other.ID != id && other.VehicleNumber == number {
				return models.Feedbackf("a vehicle with number %q already exists", number)
			}
		}
		v.VehicleNumber = number
	}
	if typeRef, typeApply := fieldRef(c, patch, "vehicleType", at...); typeRef != "" {
		typeID, out := resolveRef(typeRef, "vehicle types", vehicleTypeCandidates(snap), &typeApply, false)
		if out != nil {
			return out
		}
		v.VehicleTypeID = typeID
	}
	if depotRef, depotApply := fieldRef(c, patch, "homeDepot", at...); depotRef != "" {
		depotID, out := resolveRef(depotRef, "home depots", depotCandidates(snap), &depotApply, false)
		if out != nil {
			return out
		}
		v.HomeDepotID = depotID
	}
	if poolID, out, present := resolvePoolAt(c, patch, snap, models.PoolKindVehicle, "pool", at...); out != nil {
		return out
	} else if present {
		v.PoolID = poolID
	}

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "vehicle", ID: id, Label: v.VehicleNumber}
	return models.Applied(next, "Updated vehicle "+quoted(v.VehicleNumber), []models.Change{change})
}

func deleteVehicle(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	id, out := resolveRef(ref, "vehicles", vehicleCandidates(snap), &apply, false)
	if out != nil {
		return out
	}

	next := snap.Clone()
	var label string
	for i := range next.Vehicles {
		if next.Vehicles[i].ID == id {
			label = next.Vehicles[i].VehicleNumber
			next.Vehicles = append(next.Vehicles[:i], next.Vehicles[i+1:]...)
			break
		}
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "vehicle", ID: id, Label: label}
	return models.Applied(next, "Deleted vehicle "+quoted(label), []models.Change{change})
}
