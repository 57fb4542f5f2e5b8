package admins

import (
	"context"
	"time"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Admin) (*models.Admin, error)
	Get(ctx context.Context, id string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	List(ctx context.Context) ([]*models.Admin, error)
	// ListAccepted returns admins that have redeemed their invite.
	ListAccepted(ctx context.Context) ([]*models.Admin, error)
	SetInvite(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	Accept(ctx context.Context, id, passwordHash string, now time.Time) error
	TouchLogin(ctx context.Context, id string, now time.Time) error
}
