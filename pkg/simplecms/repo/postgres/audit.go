package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// AuditLog writes audit entries to the audit_log table.
type AuditLog struct {
	db DBTX
}

// NewAuditLog creates an audit sink over db.
func NewAuditLog(db DBTX) *AuditLog {
	return &AuditLog{db: db}
}

var (
	_ simplecms.AuditSink   = (*AuditLog)(nil)
	_ simplecms.AuditReader = (*AuditLog)(nil)
)

func (a *AuditLog) Record(ctx context.Context, entry *simplecms.AuditEntry) error {
	var details []byte
	if entry.Details != nil {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
	}
	_, err := a.db.Exec(ctx, `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAudit returns entries newest first with the total count.
func (a *AuditLog) ListAudit(ctx context.Context, limit, offset int) ([]*simplecms.AuditEntry, int64, error) {
	var total int64
	if err := a.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	rows, err := a.db.Query(ctx, `
		SELECT id, actor_id, action, entity_type, entity_id, details, created_at
		FROM audit_log ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*simplecms.AuditEntry{}
	for rows.Next() {
		var (
			e       simplecms.AuditEntry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, 0, fmt.Errorf("decode audit details: %w", err)
			}
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, total, nil
}
