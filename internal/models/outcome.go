package models

import (
	"fmt"
	"time"
)

// Change kinds.
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Change is one audit/UI record describing a single entity mutation. It is
// append-only and never mutated after creation.
type Change struct {
	Kind       string         `json:"kind"`
	EntityType string         `json:"entityType"`
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Details    map[string]any `json:"details,omitempty"`
}

// Commit task kinds. Topology replace tasks are keyed by scope; a request
// emits at most one replace task per scope (last write wins).
const (
	TaskCreateTimetableYear  = "create_timetable_year"
	TaskDeleteTimetableYear  = "delete_timetable_year"
	TaskCreateSimulation     = "create_simulation"
	TaskUpdateSimulation     = "update_simulation"
	TaskDeleteSimulation     = "delete_simulation"
	TaskReplaceTopologyScope = "replace_topology_scope"
)

// CommitTask is a deferred instruction for an externally-owned subsystem,
// executed only when a preview commits.
type CommitTask struct {
	Kind    string         `json:"kind"`
	Scope   string         `json:"scope,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Items   any            `json:"items,omitempty"`
}

// Option is one labeled candidate offered in a clarification.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ClarificationQuestion asks the user to pick among ambiguous reference
// candidates. Apply remembers where in the payload the answer goes.
type ClarificationQuestion struct {
	Question string    `json:"question"`
	Options  []Option  `json:"options"`
	Apply    ApplySpec `json:"apply"`
}

// Outcome kinds.
const (
	OutcomeApplied       = "applied"
	OutcomeFeedback      = "feedback"
	OutcomeClarification = "clarification"
)

// Outcome is the result of dispatching one action payload. Exactly one of
// the kind-specific field groups is populated.
type Outcome struct {
	Kind string `json:"kind"`

	// Applied.
	Snapshot     *ResourceSnapshot `json:"-"`
	Summary      string            `json:"summary,omitempty"`
	Changes      []Change          `json:"changes,omitempty"`
	CommitTasks  []CommitTask      `json:"-"`
	RefreshHints []string          `json:"refreshHints,omitempty"`

	// Feedback.
	Feedback string `json:"feedback,omitempty"`

	// Clarification.
	Clarification *ClarificationQuestion `json:"clarification,omitempty"`
}

// Applied builds a successful outcome.
func Applied(snapshot *ResourceSnapshot, summary string, changes []Change) *Outcome {
	return &Outcome{Kind: OutcomeApplied, Snapshot: snapshot, Summary: summary, Changes: changes}
}

// Feedbackf builds a validation-failure outcome with a formatted reason.
func Feedbackf(format string, args ...any) *Outcome {
	return &Outcome{Kind: OutcomeFeedback, Feedback: fmt.Sprintf(format, args...)}
}

// Clarify builds a clarification outcome.
func Clarify(q *ClarificationQuestion) *Outcome {
	return &Outcome{Kind: OutcomeClarification, Clarification: q}
}

// PreviewRecord is a pending, not-yet-committed outcome held by the
// preview store. Consumed exactly once by commit or evicted by TTL.
type PreviewRecord struct {
	ID           string            `json:"id"`
	ClientID     string            `json:"clientId,omitempty"`
	Role         string            `json:"role,omitempty"`
	Summary      string            `json:"summary"`
	Changes      []Change          `json:"changes"`
	Snapshot     *ResourceSnapshot `json:"-"`
	BaseHash     string            `json:"-"`
	CommitTasks  []CommitTask      `json:"-"`
	RefreshHints []string          `json:"refreshHints,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// ClarificationRecord is a pending disambiguation held by the
// clarification store, with the original payload and splice location.
type ClarificationRecord struct {
	ID        string        `json:"id"`
	ClientID  string        `json:"clientId,omitempty"`
	Role      string        `json:"role,omitempty"`
	Payload   ActionPayload `json:"-"`
	BaseHash  string        `json:"-"`
	Apply     ApplySpec     `json:"apply"`
	Question  string        `json:"question"`
	Options   []Option      `json:"options"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
