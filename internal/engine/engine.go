// Package engine coordinates the three-phase mutation protocol: preview a
// payload against the current snapshot, optionally resolve an ambiguity,
// and commit the pending result with optimistic concurrency.
package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/actions"
	"github.com/railplan/copilot/internal/metrics"
	"github.com/railplan/copilot/internal/models"
	"github.com/railplan/copilot/internal/pending"
)

// ResourceStore is the canonical master-data store the engine previews
// against and commits into.
type ResourceStore interface {
	Snapshot() (*models.ResourceSnapshot, string)
	Hash() string
	Topology() *models.TopologyState
	Replace(next *models.ResourceSnapshot, expectedHash string) (string, error)
	ReplaceTopologyScope(scope string, items any) error
}

// TaskExecutor runs the commit tasks owned by external subsystems
// (timetable years, simulations). Topology replace tasks are executed by
// the engine against the store and never reach the executor.
type TaskExecutor interface {
	Execute(ctx context.Context, task models.CommitTask) error
}

// LogExecutor acknowledges external tasks in the log. Stands in when no
// planning backend is wired up.
type LogExecutor struct {
	Log *logrus.Logger
}

// Execute implements TaskExecutor.
func (e *LogExecutor) Execute(_ context.Context, task models.CommitTask) error {
	e.Log.WithFields(logrus.Fields{"kind": task.Kind, "payload": task.Payload}).Info("commit task executed")
	return nil
}

// Interpreter turns a natural-language prompt into an action payload.
type Interpreter interface {
	Interpret(ctx context.Context, prompt string) (models.ActionPayload, error)
}

// Broadcaster pushes refresh hints to connected clients after a commit.
type Broadcaster interface {
	Broadcast(hints []string)
}

// Identity is the caller identity forwarded by the gateway.
type Identity struct {
	ClientID string
	Role     string
}

// Result kinds, mirrored in the HTTP responses.
const (
	ResultApplied       = models.OutcomeApplied
	ResultFeedback      = models.OutcomeFeedback
	ResultClarification = models.OutcomeClarification
)

// PreviewResult is the outcome of a preview or resolve call.
type PreviewResult struct {
	Kind string `json:"kind"`

	PreviewID    string          `json:"previewId,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	Changes      []models.Change `json:"changes,omitempty"`
	RefreshHints []string        `json:"refreshHints,omitempty"`

	Feedback string `json:"feedback,omitempty"`

	ResolutionID string          `json:"resolutionId,omitempty"`
	Question     string          `json:"question,omitempty"`
	Options      []models.Option `json:"options,omitempty"`
}

// CommitResult is the outcome of a successful commit.
type CommitResult struct {
	Summary      string          `json:"summary"`
	Changes      []models.Change `json:"changes,omitempty"`
	RefreshHints []string        `json:"refreshHints,omitempty"`
	Hash         string          `json:"hash"`
}

// Engine wires the dispatcher, the pending stores and the canonical store
// into the preview/resolve/commit protocol.
type Engine struct {
	store      ResourceStore
	dispatcher *actions.Dispatcher
	previews   *pending.PreviewStore
	clars      *pending.ClarificationStore
	executor   TaskExecutor
	interp     Interpreter
	hub        Broadcaster
	audit      *AuditWorker
	log        *logrus.Logger
}

// Options carries the optional collaborators.
type Options struct {
	Executor    TaskExecutor
	Interpreter Interpreter
	Hub         Broadcaster
	Audit       *AuditWorker
}

// New creates an engine.
func New(store ResourceStore, dispatcher *actions.Dispatcher, previews *pending.PreviewStore, clars *pending.ClarificationStore, log *logrus.Logger, opts Options) *Engine {
	e := &Engine{
		store:      store,
		dispatcher: dispatcher,
		previews:   previews,
		clars:      clars,
		executor:   opts.Executor,
		interp:     opts.Interpreter,
		hub:        opts.Hub,
		audit:      opts.Audit,
		log:        log,
	}
	if e.executor == nil {
		e.executor = &LogExecutor{Log: log}
	}
	return e
}

// Interpret translates a prompt into a payload using the configured
// interpreter.
func (e *Engine) Interpret(ctx context.Context, prompt string) (models.ActionPayload, error) {
	if e.interp == nil {
		return nil, fmt.Errorf("no interpreter configured")
	}
	return e.interp.Interpret(ctx, prompt)
}

// Preview dispatches a payload against the current snapshot. An applied
// outcome is parked in the preview store; an ambiguous reference is parked
// in the clarification store. Nothing canonical changes.
func (e *Engine) Preview(ctx context.Context, id Identity, payload models.ActionPayload) (*PreviewResult, error) {
	snap, hash := e.store.Snapshot()
	c := actions.NewContext(id.Role, e.store)
	out := e.dispatcher.Apply(c, payload, snap)
	metrics.PreviewOutcomes.WithLabelValues(out.Kind).Inc()

	switch out.Kind {
	case models.OutcomeApplied:
		rec := &models.PreviewRecord{
			ClientID:     id.ClientID,
			Role:         id.Role,
			Summary:      out.Summary,
			Changes:      out.Changes,
			Snapshot:     out.Snapshot,
			BaseHash:     hash,
			CommitTasks:  out.CommitTasks,
			RefreshHints: out.RefreshHints,
		}
		previewID := e.previews.Put(rec)
		e.enqueueAudit(ctx, "preview", id, previewID, out.Summary, map[string]any{"changes": len(out.Changes)})
		return &PreviewResult{
			Kind:         ResultApplied,
			PreviewID:    previewID,
			Summary:      out.Summary,
			Changes:      out.Changes,
			RefreshHints: out.RefreshHints,
		}, nil

	case models.OutcomeClarification:
		q := out.Clarification
		rec := &models.ClarificationRecord{
			ClientID: id.ClientID,
			Role:     id.Role,
			Payload:  payload.Clone(),
			BaseHash: hash,
			Apply:    q.Apply,
			Question: q.Question,
			Options:  q.Options,
		}
		resolutionID := e.clars.Put(rec)
		return &PreviewResult{
			Kind:         ResultClarification,
			ResolutionID: resolutionID,
			Question:     q.Question,
			Options:      q.Options,
		}, nil

	default:
		return &PreviewResult{Kind: ResultFeedback, Feedback: out.Feedback}, nil
	}
}

// Resolve splices the chosen candidate into the parked payload and
// re-dispatches it. The clarification is consumed either way; answering
// against a moved snapshot fails with ErrStaleSnapshot.
func (e *Engine) Resolve(ctx context.Context, id Identity, resolutionID, selectedID string) (*PreviewResult, error) {
	rec, err := e.clars.Get(resolutionID, id.ClientID, id.Role)
	if err != nil {
		return nil, err
	}

	valid := false
	for _, opt := range rec.Options {
		if opt.ID == selectedID {
			valid = true
			break
		}
	}
	if !valid {
		return &PreviewResult{Kind: ResultFeedback, Feedback: fmt.Sprintf("%q is not one of the offered candidates", selectedID)}, nil
	}

	if e.store.Hash() != rec.BaseHash {
		e.clars.Delete(resolutionID)
		e.enqueueAudit(ctx, "conflict", id, resolutionID, "clarification invalidated by concurrent change", nil)
		return nil, models.ErrStaleSnapshot
	}

	payload := rec.Payload.Clone()
	if !payload.Splice(rec.Apply, selectedID) {
		e.clars.Delete(resolutionID)
		return &PreviewResult{Kind: ResultFeedback, Feedback: "the stored request no longer matches the clarification"}, nil
	}
	e.clars.Delete(resolutionID)
	e.enqueueAudit(ctx, "resolve", id, resolutionID, "clarification answered", map[string]any{"selected": selectedID})

	return e.Preview(ctx, id, payload)
}

// Commit swaps the previewed snapshot into the store if nothing moved since
// the preview, then runs the deferred commit tasks in order. A task failure
// after the swap is surfaced as ErrCommitTaskFailed; the swap is not rolled
// back.
func (e *Engine) Commit(ctx context.Context, id Identity, previewID string) (*CommitResult, error) {
	rec, err := e.previews.Get(previewID, id.ClientID, id.Role)
	if err != nil {
		return nil, err
	}

	newHash, err := e.store.Replace(rec.Snapshot, rec.BaseHash)
	if err != nil {
		e.previews.Delete(previewID)
		e.enqueueAudit(ctx, "conflict", id, previewID, "preview invalidated by concurrent change", nil)
		metrics.CommitsTotal.WithLabelValues("conflict").Inc()
		return nil, err
	}

	for _, task := range rec.CommitTasks {
		if task.Kind == models.TaskReplaceTopologyScope {
			err = e.store.ReplaceTopologyScope(task.Scope, task.Items)
		} else {
			err = e.executor.Execute(ctx, task)
		}
		if err != nil {
			e.previews.Delete(previewID)
			e.log.WithError(err).WithField("kind", task.Kind).Error("commit task failed")
			e.enqueueAudit(ctx, "conflict", id, previewID, "commit task failed", map[string]any{"kind": task.Kind})
			metrics.CommitsTotal.WithLabelValues("task_failed").Inc()
			return nil, fmt.Errorf("executing %s: %w", task.Kind, models.ErrCommitTaskFailed)
		}
	}

	e.previews.Delete(previewID)
	e.enqueueAudit(ctx, "commit", id, previewID, rec.Summary, map[string]any{"changes": len(rec.Changes)})
	metrics.CommitsTotal.WithLabelValues("committed").Inc()
	if e.hub != nil && len(rec.RefreshHints) > 0 {
		e.hub.Broadcast(rec.RefreshHints)
	}

	// Topology replacements move the revision hash past the swap result.
	newHash = e.store.Hash()

	return &CommitResult{
		Summary:      rec.Summary,
		Changes:      rec.Changes,
		RefreshHints: rec.RefreshHints,
		Hash:         newHash,
	}, nil
}

func (e *Engine) enqueueAudit(_ context.Context, event string, id Identity, recordID, summary string, detail map[string]any) {
	if e.audit == nil {
		return
	}
	e.audit.Enqueue(&AuditJob{
		Event:    event,
		ClientID: id.ClientID,
		Role:     id.Role,
		RecordID: recordID,
		Summary:  summary,
		Detail:   detail,
	})
}
