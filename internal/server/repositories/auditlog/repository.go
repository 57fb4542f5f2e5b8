package auditlog

import (
	"context"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

// Repository is append-only: entries are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, entity models.AuditEntity, e *models.AuditLogEntry) error
	List(ctx context.Context, entity models.AuditEntity, entityID string) ([]*models.AuditLogEntry, error)
}
