package actions

import (
	"fmt"

	"github.com/railplan/copilot/internal/models"
	"github.com/railplan/copilot/internal/resolver"
)

func (d *Dispatcher) registerTopologyActions() {
	d.resolvers["create_operational_point"] = createOperationalPoint
	d.resolvers["update_operational_point"] = updateOperationalPoint
	d.resolvers["delete_operational_point"] = deleteOperationalPoint
	d.resolvers["create_section_of_line"] = createSectionOfLine
	d.resolvers["delete_section_of_line"] = deleteSectionOfLine
	d.resolvers["create_personnel_site"] = createPersonnelSite
	d.resolvers["update_personnel_site"] = updatePersonnelSite
	d.resolvers["delete_personnel_site"] = deletePersonnelSite
	d.resolvers["create_replacement_stop"] = createReplacementStop
	d.resolvers["update_replacement_stop"] = updateReplacementStop
	d.resolvers["delete_replacement_stop"] = deleteReplacementStop
	d.resolvers["create_replacement_route"] = createReplacementRoute
	d.resolvers["update_replacement_route"] = updateReplacementRoute
	d.resolvers["delete_replacement_route"] = deleteReplacementRoute
	d.resolvers["create_replacement_edge"] = createReplacementEdge
	d.resolvers["delete_replacement_edge"] = deleteReplacementEdge
	d.resolvers["create_stop_link"] = createStopLink
	d.resolvers["delete_stop_link"] = deleteStopLink
	d.resolvers["create_transfer_edge"] = createTransferEdge
	d.resolvers["delete_transfer_edge"] = deleteTransferEdge
}

func opCandidates(c *Context) []resolver.Candidate {
	ops := c.Topology().State().OperationalPoints
	cands := make([]resolver.Candidate, len(ops))
	for i, op := range ops {
		cands[i] = resolver.Candidate{ID: op.OpID, Alias: op.UniqueOpID, Label: op.Name}
	}
	return cands
}

// resolveOpID resolves an operational point reference (opId, uniqueOpId or
// name) to its opId.
func resolveOpID(c *Context, ref string, apply *models.ApplySpec) (string, *models.Outcome) {
	return resolveRef(ref, "operational points", opCandidates(c), apply, false)
}

// resolveOpRef resolves an operational point reference to its uniqueOpId,
// the form dependent collections store.
func resolveOpRef(c *Context, ref string, apply *models.ApplySpec) (string, *models.Outcome) {
	opID, out := resolveOpID(c, ref, apply)
	if out != nil {
		return "", out
	}
	return c.Topology().FindOperationalPoint(opID).UniqueOpID, nil
}

func stopCandidates(c *Context) []resolver.Candidate {
	stops := c.Topology().State().ReplacementStops
	cands := make([]resolver.Candidate, len(stops))
	for i, s := range stops {
		cands[i] = resolver.Candidate{ID: s.ReplacementStopID, Label: s.Name, Alias: s.StopCode}
	}
	return cands
}

func routeCandidates(c *Context) []resolver.Candidate {
	routes := c.Topology().State().ReplacementRoutes
	cands := make([]resolver.Candidate, len(routes))
	for i, r := range routes {
		cands[i] = resolver.Candidate{ID: r.ReplacementRouteID, Label: r.Name}
	}
	return cands
}

func sectionCandidates(c *Context) []resolver.Candidate {
	sols := c.Topology().State().SectionsOfLine
	cands := make([]resolver.Candidate, len(sols))
	for i, sol := range sols {
		cands[i] = resolver.Candidate{ID: sol.SolID, Label: sol.StartUniqueOpID + " - " + sol.EndUniqueOpID}
	}
	return cands
}

func positionFrom(p models.ActionPayload) models.Position {
	pos := p.Object("position")
	if pos == nil {
		return models.Position{}
	}
	lat, _ := pos.Float("lat")
	lon, _ := pos.Float("lon")
	return models.Position{Lat: lat, Lon: lon}
}

func createOperationalPoint(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	uid := p.String("uniqueOpId")
	if name == "" || uid == "" {
		return models.Feedbackf("an operational point needs a name and a uniqueOpId")
	}
	op := models.OperationalPoint{
		OpID:        p.String("opId"),
		UniqueOpID:  uid,
		Name:        name,
		CountryCode: p.String("countryCode"),
		OpType:      p.String("opType"),
		Position:    positionFrom(p),
	}
	ws := c.Topology()
	if err := ws.AddOperationalPoint(&op); err != nil {
		return models.Feedbackf("%s", err)
	}

	change := models.Change{
		Kind: models.ChangeCreate, EntityType: "operational_point", ID: uid, Label: name,
		Details: map[string]any{"opId": op.OpID},
	}
	return models.Applied(snap, "Created operational point "+quoted(name), []models.Change{change})
}

func updateOperationalPoint(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	opID, out := resolveOpID(c, ref, &apply)
	if out != nil {
		return out
	}
	patch, _ := patchObject(p)

	ws := c.Topology()
	counts, err := ws.UpdateOperationalPoint(opID, func(op *models.OperationalPoint) error {
		if v := patch.String("name"); v != "" {
			op.Name = v
		}
		if v := patch.String("countryCode"); v != "" {
			op.CountryCode = v
		}
		if v := patch.String("opType"); v != "" {
			op.OpType = v
		}
		if pos := patch.Object("position"); pos != nil {
			op.Position = positionFrom(patch)
		}
		if v := patch.String("uniqueOpId"); v != "" {
			op.UniqueOpID = v
		}
		return nil
	})
	if err != nil {
		return models.Feedbackf("%s", err)
	}

	op := ws.FindOperationalPoint(opID)
	change := models.Change{Kind: models.ChangeUpdate, EntityType: "operational_point", ID: op.UniqueOpID, Label: op.Name}
	summary := "Updated operational point " + quoted(op.Name)
	if counts.Total() > 0 {
		change.Details = map[string]any{"relinkedReferences": counts.Total()}
		summary += fmt.Sprintf(" (relinked %d references)", counts.Total())
	}
	return models.Applied(snap, summary, []models.Change{change})
}

func deleteOperationalPoint(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	opID, out := resolveOpID(c, ref, &apply)
	if out != nil {
		return out
	}
	ws := c.Topology()
	op := ws.FindOperationalPoint(opID)
	name, uid := op.Name, op.UniqueOpID
	counts, ok := ws.DeleteOperationalPoint(opID)
	if !ok {
		return models.Feedbackf("no operational points found matching %q", ref)
	}

	change := models.Change{
		Kind: models.ChangeDelete, EntityType: "operational_point", ID: uid, Label: name,
		Details: counts.Details(),
	}
	return models.Applied(snap, "Deleted operational point "+quoted(name), []models.Change{change})
}

func createSectionOfLine(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	startRef, startApply := fieldRef(c, p, "start")
	endRef, endApply := fieldRef(c, p, "end")
	if startRef == "" || endRef == "" {
		return models.Feedbackf("a section of line needs start and end operational points")
	}
	startUID, out := resolveOpRef(c, startRef, &startApply)
	if out != nil {
		return out
	}
	endUID, out := resolveOpRef(c, endRef, &endApply)
	if out != nil {
		return out
	}

	sol := models.SectionOfLine{
		SolID:           p.String("solId"),
		StartUniqueOpID: startUID,
		EndUniqueOpID:   endUID,
		Nature:          p.String("nature"),
	}
	if sol.Nature == "" {
		sol.Nature = "REGULAR"
	}
	if km, ok := p.Float("lengthKm"); ok && km > 0 {
		sol.LengthKm = km
	}
	ws := c.Topology()
	if err := ws.AddSection(&sol); err != nil {
		return models.Feedbackf("%s", err)
	}

	label := startUID + " - " + endUID
	change := models.Change{Kind: models.ChangeCreate, EntityType: "section_of_line", ID: sol.SolID, Label: label}
	return models.Applied(snap, "Created section of line "+label, []models.Change{change})
}

func deleteSectionOfLine(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	solID, out := resolveRef(ref, "sections of line", sectionCandidates(c), &apply, false)
	if out != nil {
		return out
	}
	ws := c.Topology()
	sol := ws.FindSection(solID)
	label := sol.StartUniqueOpID + " - " + sol.EndUniqueOpID
	if !ws.DeleteSection(solID) {
		return models.Feedbackf("no sections of line found matching %q", ref)
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "section_of_line", ID: solID, Label: label}
	return models.Applied(snap, "Deleted section of line "+label, []models.Change{change})
}

func createPersonnelSite(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a personnel site name is required")
	}
	var uid string
	if ref, apply := fieldRef(c, p, "operationalPoint"); ref != "" {
		resolved, out := resolveOpRef(c, ref, &apply)
		if out != nil {
			return out
		}
		uid = resolved
	}
	site := models.PersonnelSite{
		SiteID:           p.String("siteId"),
		SiteType:         p.String("siteType"),
		Name:             name,
		UniqueOpID:       uid,
		Position:         positionFrom(p),
		OpeningHoursJSON: p.String("openingHoursJson"),
	}
	ws := c.Topology()
	if err := ws.AddSite(&site); err != nil {
		return models.Feedbackf("%s", err)
	}

	change := models.Change{Kind: models.ChangeCreate, EntityType: "personnel_site", ID: site.SiteID, Label: name}
	return models.Applied(snap, "Created personnel site "+quoted(name), []models.Change{change})
}

func updatePersonnelSite(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	siteID, out := resolveRef(ref, "personnel sites", siteCandidates(c), &apply, false)
	if out != nil {
		return out
	}
	patch, at := patchObject(p)

	ws := c.Topology()
	site := ws.FindSite(siteID)
	if v := patch.String("name"); v != "" {
		site.Name = v
	}
	if v := patch.String("siteType"); v != "" {
		site.SiteType = v
	}
	if pos := patch.Object("position"); pos != nil {
		site.Position = positionFrom(patch)
	}
	if v := patch.String("openingHoursJson"); v != "" {
		site.OpeningHoursJSON = v
	}
	if opRef, opApply := fieldRef(c, patch, "operationalPoint", at...); opRef != "" {
		uid, out := resolveOpRef(c, opRef, &opApply)
		if out != nil {
			return out
		}
		site.UniqueOpID = uid
	}
	ws.Touch(models.ScopePersonnelSites)

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "personnel_site", ID: siteID, Label: site.Name}
	return models.Applied(snap, "Updated personnel site "+quoted(site.Name), []models.Change{change})
}

func deletePersonnelSite(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	siteID, out := resolveRef(ref, "personnel sites", siteCandidates(c), &apply, false)
	if out != nil {
		return out
	}
	ws := c.Topology()
	name := ws.FindSite(siteID).Name
	counts, ok := ws.DeleteSite(siteID)
	if !ok {
		return models.Feedbackf("no personnel sites found matching %q", ref)
	}

	change := models.Change{
		Kind: models.ChangeDelete, EntityType: "personnel_site", ID: siteID, Label: name,
		Details: counts.Details(),
	}
	return models.Applied(snap, "Deleted personnel site "+quoted(name), []models.Change{change})
}

func createReplacementStop(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a replacement stop name is required")
	}
	var nearest string
	if ref, apply := fieldRef(c, p, "nearestOperationalPoint"); ref != "" {
		resolved, out := resolveOpRef(c, ref, &apply)
		if out != nil {
			return out
		}
		nearest = resolved
	}
	stop := models.ReplacementStop{
		ReplacementStopID: p.String("replacementStopId"),
		Name:              name,
		StopCode:          p.String("stopCode"),
		NearestUniqueOpID: nearest,
		Position:          positionFrom(p),
	}
	ws := c.Topology()
	if err := ws.AddStop(&stop); err != nil {
		return models.Feedbackf("%s", err)
	}

	change := models.Change{Kind: models.ChangeCreate, EntityType: "replacement_stop", ID: stop.ReplacementStopID, Label: name}
	return models.Applied(snap, "Created replacement stop "+quoted(name), []models.Change{change})
}

func updateReplacementStop(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	stopID, out := resolveRef(ref, "replacement stops", stopCandidates(c), &apply, false)
	if out != nil {
		return out
	}
	patch, at := patchObject(p)

	ws := c.Topology()
	stop := ws.FindStop(stopID)
	if v := patch.String("name"); v != "" {
		stop.Name = v
	}
	if v := patch.String("stopCode"); v != "" {
		stop.StopCode = v
	}
	if pos := patch.Object("position"); pos != nil {
		stop.Position = positionFrom(patch)
	}
	if opRef, opApply := fieldRef(c, patch, "nearestOperationalPoint", at...); opRef != "" {
		uid, out := resolveOpRef(c, opRef, &opApply)
		if out != nil {
			return out
		}
		stop.NearestUniqueOpID = uid
	}
	ws.Touch(models.ScopeReplacementStops)

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "replacement_stop", ID: stopID, Label: stop.Name}
	return models.Applied(snap, "Updated replacement stop "+quoted(stop.Name), []models.Change{change})
}

func deleteReplacementStop(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	stopID, out := resolveRef(ref, "replacement stops", stopCandidates(c), &apply, false)
	if out != nil {
		return out
	}
	ws := c.Topology()
	name := ws.FindStop(stopID).Name
	counts, ok := ws.DeleteStop(stopID)
	if !ok {
		return models.Feedbackf("no replacement stops found matching %q", ref)
	}

	change := models.Change{
		Kind: models.ChangeDelete, EntityType: "replacement_stop", ID: stopID, Label: name,
		Details: counts.Details(),
	}
	return models.Applied(snap, "Deleted replacement stop "+quoted(name), []models.Change{change})
}

func createReplacementRoute(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	name := p.String("name")
	if name == "" {
		return models.Feedbackf("a replacement route name is required")
	}
	route := models.ReplacementRoute{
		ReplacementRouteID: p.String("replacementRouteId"),
		Name:               name,
		Operator:           p.String("operator"),
	}
	ws := c.Topology()
	if err := ws.AddRoute(&route); err != nil {
		return models.Feedbackf("%s", err)
	}

	change := models.Change{Kind: models.ChangeCreate, EntityType: "replacement_route", ID: route.ReplacementRouteID, Label: name}
	return models.Applied(snap, "Created replacement route "+quoted(name), []models.Change{change})
}

func updateReplacementRoute(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	routeID, out := resolveRef(ref, "replacement routes", routeCandidates(c), &apply, false)
	if out != nil {
		return out
	}
	patch, _ := patchObject(p)

	ws := c.Topology()
	route := ws.FindRoute(routeID)
	if v := patch.String("name"); v != "" {
		route.Name = v
	}
	if v := patch.String("operator"); v != "" {
		route.Operator = v
	}
	ws.Touch(models.ScopeReplacementRoutes)

	change := models.Change{Kind: models.ChangeUpdate, EntityType: "replacement_route", ID: routeID, Label: route.Name}
	return models.Applied(snap, "Updated replacement route "+quoted(route.Name), []models.Change{change})
}

func deleteReplacementRoute(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	ref, apply := targetRef(c, p, "target")
	routeID, out := resolveRef(ref, "replacement routes", routeCandidates(c), &apply, false)
	if out != nil {
		return out
	}
	ws := c.Topology()
	name := ws.FindRoute(routeID).Name
	counts, ok := ws.DeleteRoute(routeID)
	if !ok {
		return models.Feedbackf("no replacement routes found matching %q", ref)
	}

	change := models.Change{
		Kind: models.ChangeDelete, EntityType: "replacement_route", ID: routeID, Label: name,
		Details: counts.Details(),
	}
	return models.Applied(snap, "Deleted replacement route "+quoted(name), []models.Change{change})
}

func createReplacementEdge(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	routeRef, routeApply := fieldRef(c, p, "route")
	fromRef, fromApply := fieldRef(c, p, "from")
	toRef, toApply := fieldRef(c, p, "to")
	seq, hasSeq := p.Int("seq")
	if routeRef == "" || fromRef == "" || toRef == "" || !hasSeq {
		return models.Feedbackf("a replacement edge needs a route, from/to stops and a seq")
	}
	routeID, out := resolveRef(routeRef, "replacement routes", routeCandidates(c), &routeApply, false)
	if out != nil {
		return out
	}
	fromID, out := resolveRef(fromRef, "replacement stops", stopCandidates(c), &fromApply, false)
	if out != nil {
		return out
	}
	toID, out := resolveRef(toRef, "replacement stops", stopCandidates(c), &toApply, false)
	if out != nil {
		return out
	}

	edge := models.ReplacementEdge{
		ReplacementEdgeID:  p.String("replacementEdgeId"),
		ReplacementRouteID: routeID,
		FromStopID:         fromID,
		ToStopID:           toID,
		Seq:                seq,
	}
	if v, ok := p.Int("avgDurationSec"); ok && v > 0 {
		edge.AvgDurationSec = v
	}
	if v, ok := p.Int("distanceM"); ok && v > 0 {
		edge.DistanceM = v
	}
	ws := c.Topology()
	if err := ws.AddEdge(&edge); err != nil {
		return models.Feedbackf("%s", err)
	}

	label := fmt.Sprintf("%s #%d", routeRef, seq)
	change := models.Change{Kind: models.ChangeCreate, EntityType: "replacement_edge", ID: edge.ReplacementEdgeID, Label: label}
	return models.Applied(snap, "Created replacement edge "+label, []models.Change{change})
}

func deleteReplacementEdge(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	edgeID := p.String("target")
	if edgeID == "" {
		return models.Feedbackf("a replacement edge is addressed by its id")
	}
	ws := c.Topology()
	if !ws.DeleteEdge(edgeID) {
		return models.Feedbackf("no replacement edges found matching %q", edgeID)
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "replacement_edge", ID: edgeID, Label: edgeID}
	return models.Applied(snap, "Deleted replacement edge "+edgeID, []models.Change{change})
}

func createStopLink(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	opRef, opApply := fieldRef(c, p, "operationalPoint")
	stopRef, stopApply := fieldRef(c, p, "replacementStop")
	if opRef == "" || stopRef == "" {
		return models.Feedbackf("a stop link needs an operational point and a replacement stop")
	}
	uid, out := resolveOpRef(c, opRef, &opApply)
	if out != nil {
		return out
	}
	stopID, out := resolveRef(stopRef, "replacement stops", stopCandidates(c), &stopApply, false)
	if out != nil {
		return out
	}

	link := models.OpReplacementStopLink{
		LinkID:            p.String("linkId"),
		UniqueOpID:        uid,
		ReplacementStopID: stopID,
		RelationType:      p.String("relationType"),
	}
	if v, ok := p.Int("walkingTimeSec"); ok && v > 0 {
		link.WalkingTimeSec = v
	}
	if v, ok := p.Int("distanceM"); ok && v > 0 {
		link.DistanceM = v
	}
	ws := c.Topology()
	if err := ws.AddStopLink(&link); err != nil {
		return models.Feedbackf("%s", err)
	}

	label := uid + " - " + stopID
	change := models.Change{Kind: models.ChangeCreate, EntityType: "stop_link", ID: link.LinkID, Label: label}
	return models.Applied(snap, "Linked operational point "+uid+" with replacement stop", []models.Change{change})
}

func deleteStopLink(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	linkID := p.String("target")
	if linkID == "" {
		return models.Feedbackf("a stop link is addressed by its id")
	}
	ws := c.Topology()
	if !ws.DeleteStopLink(linkID) {
		return models.Feedbackf("no stop links found matching %q", linkID)
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "stop_link", ID: linkID, Label: linkID}
	return models.Applied(snap, "Deleted stop link "+linkID, []models.Change{change})
}

// transferNodeFrom resolves a {kind, ref} payload fragment to a transfer
// node, resolving the ref within the collection the kind names.
func transferNodeFrom(c *Context, p models.ActionPayload, key string) (models.TransferNode, *models.Outcome) {
	obj := p.Object(key)
	if obj == nil {
		return models.TransferNode{}, models.Feedbackf("a transfer edge needs %q as an object with kind and ref", key)
	}
	kind := obj.String("kind")
	ref := obj.String("ref")
	if ref == "" {
		return models.TransferNode{}, models.Feedbackf("transfer node %q needs a ref", key)
	}
	apply := c.applyAt(models.ApplyModeValue, key, "ref")

	switch kind {
	case models.TransferNodeOP:
		uid, out := resolveOpRef(c, ref, &apply)
		if out != nil {
			return models.TransferNode{}, out
		}
		return models.TransferNode{Kind: kind, Ref: uid}, nil
	case models.TransferNodePersonnelSite:
		siteID, out := resolveRef(ref, "personnel sites", siteCandidates(c), &apply, false)
		if out != nil {
			return models.TransferNode{}, out
		}
		return models.TransferNode{Kind: kind, Ref: siteID}, nil
	case models.TransferNodeReplacementStop:
		stopID, out := resolveRef(ref, "replacement stops", stopCandidates(c), &apply, false)
		if out != nil {
			return models.TransferNode{}, out
		}
		return models.TransferNode{Kind: kind, Ref: stopID}, nil
	default:
		return models.TransferNode{}, models.Feedbackf("unknown transfer node kind %q", kind)
	}
}

func createTransferEdge(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	from, out := transferNodeFrom(c, p, "from")
	if out != nil {
		return out
	}
	to, out := transferNodeFrom(c, p, "to")
	if out != nil {
		return out
	}

	edge := models.TransferEdge{
		TransferID:    p.String("transferId"),
		From:          from,
		To:            to,
		Mode:          p.String("mode"),
		Bidirectional: p.Bool("bidirectional"),
	}
	if v, ok := p.Int("avgDurationSec"); ok && v > 0 {
		edge.AvgDurationSec = v
	}
	if v, ok := p.Int("distanceM"); ok && v > 0 {
		edge.DistanceM = v
	}
	ws := c.Topology()
	if err := ws.AddTransferEdge(&edge); err != nil {
		return models.Feedbackf("%s", err)
	}

	label := from.Ref + " - " + to.Ref
	change := models.Change{Kind: models.ChangeCreate, EntityType: "transfer_edge", ID: edge.TransferID, Label: label}
	return models.Applied(snap, "Created transfer edge "+label, []models.Change{change})
}

func deleteTransferEdge(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	transferID := p.String("target")
	if transferID == "" {
		return models.Feedbackf("a transfer edge is addressed by its id")
	}
	ws := c.Topology()
	if !ws.DeleteTransferEdge(transferID) {
		return models.Feedbackf("no transfer edges found matching %q", transferID)
	}

	change := models.Change{Kind: models.ChangeDelete, EntityType: "transfer_edge", ID: transferID, Label: transferID}
	return models.Applied(snap, "Deleted transfer edge "+transferID, []models.Change{change})
}
