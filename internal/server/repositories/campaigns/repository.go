package campaigns

import (
	"context"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.AdCampaign) (*models.AdCampaign, error)
	List(ctx context.Context) ([]*models.AdCampaign, error)
	TotalSpend(ctx context.Context) (int64, error)
}
