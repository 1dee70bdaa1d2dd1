// Package resolver resolves free-text or id references to canonical entity
// ids within a named collection.
package resolver

import (
	"strings"

	"github.com/railplan/copilot/internal/models"
)

// Candidate is one entry of the collection a reference is resolved against.
type Candidate struct {
	ID     string
	Label  string
	Alias  string // optional second exact-id key (e.g. uniqueOpId)
	System bool   // excluded from name matching unless explicitly allowed
}

// Normalize canonicalizes a reference or label for name comparison: trim,
// lowercase, collapse internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// Resolve resolves ref against candidates. An exact id (or alias) match
// wins outright, even for system entries. Otherwise names are compared
// after Normalize. Returns the resolved id, or the ambiguous matches with
// models.ErrRefAmbiguous, or models.ErrRefNotFound.
func Resolve(ref string, candidates []Candidate, allowSystem bool) (string, []Candidate, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil, models.ErrRefNotFound
	}

	for _, c := range candidates {
		if c.ID == ref || (c.Alias != "" && c.Alias == ref) {
			return c.ID, nil, nil
		}
	}

	want := Normalize(ref)
	var matches []Candidate
	for _, c := range candidates {
		if c.System && !allowSystem {
			continue
		}
		if Normalize(c.Label) == want {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", nil, models.ErrRefNotFound
	case 1:
		return matches[0].ID, nil, nil
	default:
		return "", matches, models.ErrRefAmbiguous
	}
}

// Options converts candidates to labeled clarification options, capped at
// limit (0 means no cap).
func Options(matches []Candidate, limit int) []models.Option {
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]models.Option, len(matches))
	for i, m := range matches {
		out[i] = models.Option{ID: m.ID, Label: m.Label}
	}
	return out
}
