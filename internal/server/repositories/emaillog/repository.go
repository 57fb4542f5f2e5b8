package emaillog

import (
	"context"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, l *models.EmailLog) error
	List(ctx context.Context, filter models.EmailLogFilter) ([]*models.EmailLog, error)
}
