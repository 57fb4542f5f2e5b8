package sponsors

import (
	"context"
	"time"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Sponsor) (*models.Sponsor, error)
	Get(ctx context.Context, id string) (*models.Sponsor, error)
	List(ctx context.Context, status models.SponsorStatus) ([]*models.Sponsor, error)
	Update(ctx context.Context, id string, f models.SponsorFields, paidAt *time.Time, now time.Time) error
	PaidTotals(ctx context.Context) (count int, amount int64, err error)
}
