package api

import (
	"context"

	"github.com/railplan/copilot/internal/engine"
	"github.com/railplan/copilot/internal/models"
)

// MutationEngine is the engine surface the mutation handlers depend on.
type MutationEngine interface {
	Interpret(ctx context.Context, prompt string) (models.ActionPayload, error)
	Preview(ctx context.Context, id engine.Identity, payload models.ActionPayload) (*engine.PreviewResult, error)
	Resolve(ctx context.Context, id engine.Identity, resolutionID, selectedID string) (*engine.PreviewResult, error)
	Commit(ctx context.Context, id engine.Identity, previewID string) (*engine.CommitResult, error)
}

var _ MutationEngine = (*engine.Engine)(nil)
