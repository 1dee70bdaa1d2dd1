package client

type previewRequest struct {
	Payload map[string]any `json:"payload,omitempty"`
	Prompt  string         `json:"prompt,omitempty"`
}

type resolveRequest struct {
	SelectedID string `json:"selectedId"`
}

// Change mirrors one entity mutation reported by the engine.
type Change struct {
	Kind       string         `json:"kind"`
	EntityType string         `json:"entityType"`
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Details    map[string]any `json:"details,omitempty"`
}

// ClarifyOption is one candidate offered by a clarification.
type ClarifyOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PreviewResponse is the result of a preview or resolve call. Kind is
// "applied", "feedback" or "clarification" and selects which fields are set.
type PreviewResponse struct {
	Kind string `json:"kind"`

	PreviewID    string   `json:"previewId,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Changes      []Change `json:"changes,omitempty"`
	RefreshHints []string `json:"refreshHints,omitempty"`

	Feedback string `json:"feedback,omitempty"`

	ResolutionID string          `json:"resolutionId,omitempty"`
	Question     string          `json:"question,omitempty"`
	Options      []ClarifyOption `json:"options,omitempty"`
}

// CommitResponse is the result of a successful commit.
type CommitResponse struct {
	Summary      string   `json:"summary"`
	Changes      []Change `json:"changes,omitempty"`
	RefreshHints []string `json:"refreshHints,omitempty"`
	Hash         string   `json:"hash"`
}

// AuditEntry is one persisted audit event.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	ClientID  string         `json:"clientId,omitempty"`
	Role      string         `json:"role,omitempty"`
	RecordID  string         `json:"recordId,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

type auditResponse struct {
	Entries []AuditEntry `json:"entries"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
