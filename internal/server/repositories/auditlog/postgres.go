// Package auditlog stores the registration and sponsor audit trails in
// PostgreSQL, one table per entity kind.
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

var tables = map[models.AuditEntity]string{
	models.AuditRegistration: "registration_audit_log",
	models.AuditSponsor:      "sponsor_audit_log",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func tableFor(entity models.AuditEntity) (string, error) {
	t, ok := tables[entity]
	if !ok {
		return "", fmt.Errorf("unknown audit entity %q", entity)
	}
	return t, nil
}

func (r *PostgresRepository) Append(ctx context.Context, entity models.AuditEntity, e *models.AuditLogEntry) error {
	table, err := tableFor(entity)
	if err != nil {
		return err
	}

	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	query := `INSERT INTO ` + table + ` (entity_id, actor_id, action, changes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query, e.EntityID, e.ActorID, string(e.Action), changes).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns the entity's audit trail, newest first.
func (r *PostgresRepository) List(ctx context.Context, entity models.AuditEntity, entityID string) ([]*models.AuditLogEntry, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, entity_id, actor_id, action, changes, created_at FROM ` + table + `
		 WHERE entity_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditLogEntry
	for rows.Next() {
		var (
			e       models.AuditLogEntry
			action  string
			changes []byte
		)
		if err := rows.Scan(&e.ID, &e.EntityID, &e.ActorID, &action, &changes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Action = models.AuditAction(action)
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, fmt.Errorf("unmarshal changes: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
