// Package actions validates action payloads against the current snapshot
// and topology working set, and dispatches them to per-kind resolvers.
package actions

import (
	"github.com/railplan/copilot/internal/models"
	"github.com/railplan/copilot/internal/resolver"
	"github.com/railplan/copilot/internal/topology"
)

// TopologySource provides the canonical topology collections the working
// set is cloned from.
type TopologySource interface {
	Topology() *models.TopologyState
}

// Context carries the request-scoped state threaded through dispatch: the
// caller's role, the lazily-built topology working set, and the payload
// path prefix used when a clarification has to point back into a batch.
type Context struct {
	Role string

	source TopologySource
	holder *topoHolder
	prefix []any
}

// topoHolder shares the lazily-built working set between a batch context
// and its sub-action contexts, so all sub-actions see each other's edits.
type topoHolder struct {
	ws *topology.WorkingSet
}

// NewContext creates a request context. source may be nil for requests that
// can never touch topology (tests mostly).
func NewContext(role string, source TopologySource) *Context {
	return &Context{Role: role, source: source, holder: &topoHolder{}}
}

// Topology lazily deep-copies the canonical collections, once per request.
// Every topology resolver mutates this shared working copy.
func (c *Context) Topology() *topology.WorkingSet {
	if c.holder.ws == nil {
		var canonical *models.TopologyState
		if c.source != nil {
			canonical = c.source.Topology()
		}
		c.holder.ws = topology.New(canonical)
	}
	return c.holder.ws
}

// TopologyTouched reports whether the working set was built and modified.
func (c *Context) TopologyTouched() bool {
	return c.holder.ws != nil && c.holder.ws.Touched()
}

// applyAt builds an apply spec addressing a payload location relative to
// the original top-level payload, including any batch prefix.
func (c *Context) applyAt(mode string, keys ...any) models.ApplySpec {
	path := make([]any, 0, len(c.prefix)+len(keys))
	path = append(path, c.prefix...)
	path = append(path, keys...)
	return models.ApplySpec{Mode: mode, Path: path}
}

// pushPrefix returns a child context whose apply paths are prefixed with
// the given elements (used by batch to address sub-action payloads).
func (c *Context) pushPrefix(elems ...any) *Context {
	child := *c
	child.prefix = append(append([]any(nil), c.prefix...), elems...)
	return &child
}

// Bounded candidate lists: feedback shows at most feedbackOptionLimit
// labels, clarifications offer at most clarifyOptionLimit choices.
const (
	feedbackOptionLimit = 5
	clarifyOptionLimit  = 5
)

// resolveRef resolves a reference and converts failures into outcomes: a
// clarification when an apply spec is provided, feedback otherwise. On
// success the returned outcome is nil.
func resolveRef(ref, collection string, cands []resolver.Candidate, apply *models.ApplySpec, allowSystem bool) (string, *models.Outcome) {
	id, matches, err := resolver.Resolve(ref, cands, allowSystem)
	switch {
	case err == nil:
		return id, nil
	case len(matches) > 1 && apply != nil:
		return "", models.Clarify(&models.ClarificationQuestion{
			Question: "Multiple " + collection + " match " + quoted(ref) + ". Which one did you mean?",
			Options:  resolver.Options(matches, clarifyOptionLimit),
			Apply:    *apply,
		})
	case len(matches) > 1:
		labels := ""
		for i, o := range resolver.Options(matches, feedbackOptionLimit) {
			if i > 0 {
				labels += ", "
			}
			labels += o.Label
		}
		return "", models.Feedbackf("reference %q in %s is ambiguous: %s", ref, collection, labels)
	default:
		return "", models.Feedbackf("no %s found matching %q", collection, ref)
	}
}

func quoted(s string) string { return "\"" + s + "\"" }
