package actions

import "github.com/railplan/copilot/internal/models"

// Timetable years and simulations are owned by external subsystems: the
// resolvers validate the payload and emit deferred commit tasks instead of
// touching the snapshot.
func (d *Dispatcher) registerPlanningActions() {
	d.resolvers["create_timetable_year"] = createTimetableYear
	d.resolvers["delete_timetable_year"] = deleteTimetableYear
	d.resolvers["create_simulation"] = createSimulation
	d.resolvers["update_simulation"] = updateSimulation
	d.resolvers["delete_simulation"] = deleteSimulation
}

func yearLabel(p models.ActionPayload) string {
	if label := p.String("label"); label != "" {
		return label
	}
	return p.String("year")
}

func createTimetableYear(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	label := yearLabel(p)
	if label == "" {
		return models.Feedbackf("a timetable year label is required")
	}
	out := models.Applied(snap, "Scheduled creation of timetable year "+quoted(label), []models.Change{
		{Kind: models.ChangeCreate, EntityType: "timetable_year", ID: label, Label: label},
	})
	out.CommitTasks = []models.CommitTask{{
		Kind:    models.TaskCreateTimetableYear,
		Payload: map[string]any{"label": label},
	}}
	return out
}

func deleteTimetableYear(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	label := yearLabel(p)
	if label == "" {
		return models.Feedbackf("a timetable year label is required")
	}
	out := models.Applied(snap, "Scheduled deletion of timetable year "+quoted(label), []models.Change{
		{Kind: models.ChangeDelete, EntityType: "timetable_year", ID: label, Label: label},
	})
	out.CommitTasks = []models.CommitTask{{
		Kind:    models.TaskDeleteTimetableYear,
		Payload: map[string]any{"label": label},
	}}
	return out
}

// simulationSelector builds the id-or-label+year selector the external
// executor resolves at commit time.
func simulationSelector(p models.ActionPayload) (map[string]any, *models.Outcome) {
	if id := p.String("id"); id != "" {
		return map[string]any{"id": id}, nil
	}
	label := p.String("label")
	year := p.String("year")
	if label == "" || year == "" {
		return nil, models.Feedbackf("a simulation is addressed by id, or by label and year")
	}
	return map[string]any{"label": label, "year": year}, nil
}

func createSimulation(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	label := p.String("label")
	year := p.String("year")
	if label == "" || year == "" {
		return models.Feedbackf("a simulation needs a label and a timetable year")
	}
	payload := map[string]any{"label": label, "year": year}
	if desc := p.String("description"); desc != "" {
		payload["description"] = desc
	}
	out := models.Applied(snap, "Scheduled creation of simulation "+quoted(label)+" for "+year, []models.Change{
		{Kind: models.ChangeCreate, EntityType: "simulation", ID: label, Label: label + " (" + year + ")"},
	})
	out.CommitTasks = []models.CommitTask{{Kind: models.TaskCreateSimulation, Payload: payload}}
	return out
}

func updateSimulation(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	selector, fb := simulationSelector(p)
	if fb != nil {
		return fb
	}
	patch := p.Object("patch")
	if len(patch) == 0 {
		return models.Feedbackf("a simulation update needs a patch")
	}
	label := p.String("label")
	if label == "" {
		label = p.String("id")
	}
	out := models.Applied(snap, "Scheduled update of simulation "+quoted(label), []models.Change{
		{Kind: models.ChangeUpdate, EntityType: "simulation", ID: label, Label: label},
	})
	out.CommitTasks = []models.CommitTask{{
		Kind:    models.TaskUpdateSimulation,
		Payload: map[string]any{"selector": selector, "patch": map[string]any(patch)},
	}}
	return out
}

func deleteSimulation(c *Context, p models.ActionPayload, snap *models.ResourceSnapshot) *models.Outcome {
	selector, fb := simulationSelector(p)
	if fb != nil {
		return fb
	}
	label := p.String("label")
	if label == "" {
		label = p.String("id")
	}
	out := models.Applied(snap, "Scheduled deletion of simulation "+quoted(label), []models.Change{
		{Kind: models.ChangeDelete, EntityType: "simulation", ID: label, Label: label},
	})
	out.CommitTasks = []models.CommitTask{{Kind: models.TaskDeleteSimulation, Payload: map[string]any{"selector": selector}}}
	return out
}
