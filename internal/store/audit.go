package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const auditQueryTimeout = 5 * time.Second

// AuditStore persists engine audit events in the copilot_audit_log table.
type AuditStore struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(pool *pgxpool.Pool, log *logrus.Logger) *AuditStore {
	return &AuditStore{pool: pool, log: log}
}

// RecordAudit inserts one audit entry.
func (s *AuditStore) RecordAudit(
	ctx context.Context,
	event, clientID, role, recordID, summary string,
	detail map[string]any,
) error {
	ctx, cancel := context.WithTimeout(ctx, auditQueryTimeout)
	defer cancel()

	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO copilot_audit_log (event, client_id, role, record_id, summary, detail)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event, clientID, role, recordID, summary, detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
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
	CreatedAt time.Time      `json:"createdAt"`
}

// RecentAudit returns the newest entries, capped at limit.
func (s *AuditStore) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, auditQueryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, event, client_id, role, record_id, summary, detail, created_at
		FROM copilot_audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var detailJSON []byte
		if err := rows.Scan(&e.ID, &e.Event, &e.ClientID, &e.Role, &e.RecordID, &e.Summary, &detailJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if detailJSON != nil {
			if err := json.Unmarshal(detailJSON, &e.Detail); err != nil {
				s.log.WithError(err).Warn("failed to unmarshal audit detail")
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
