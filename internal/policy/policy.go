// Package policy decides which action kinds a client role may execute.
package policy

import (
	"fmt"
	"strings"
)

// Policy is an allowlist keyed by role. The wildcard role "*" applies to
// every caller; the wildcard action "*" allows all action kinds for a role.
// An empty policy allows everything.
type Policy struct {
	rules map[string]map[string]bool
}

// New builds a policy from role → allowed action kinds.
func New(rules map[string][]string) *Policy {
	p := &Policy{rules: make(map[string]map[string]bool, len(rules))}
	for role, acts := range rules {
		set := make(map[string]bool, len(acts))
		for _, a := range acts {
			set[a] = true
		}
		p.rules[role] = set
	}
	return p
}

// Parse reads the compact form used by the ROLE_POLICY environment
// variable: "role=action,action;role=*". Whitespace around separators is
// ignored.
func Parse(s string) (*Policy, error) {
	rules := make(map[string][]string)
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		role, actions, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid policy entry %q, expected role=actions", entry)
		}
		role = strings.TrimSpace(role)
		if role == "" {
			return nil, fmt.Errorf("invalid policy entry %q, empty role", entry)
		}
		for _, a := range strings.Split(actions, ",") {
			if a = strings.TrimSpace(a); a != "" {
				rules[role] = append(rules[role], a)
			}
		}
	}
	return New(rules), nil
}

// IsAllowed reports whether a role may execute an action kind.
func (p *Policy) IsAllowed(action, role string) bool {
	if p == nil || len(p.rules) == 0 {
		return true
	}
	for _, r := range []string{role, "*"} {
		if set, ok := p.rules[r]; ok && (set["*"] || set[action]) {
			return true
		}
	}
	return false
}
