package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

type CampaignService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCampaignService(db *sql.DB, m repomanager.RepositoryManager) *CampaignService {
	return &CampaignService{db: db, repomanager: m}
}

func (s *CampaignService) Create(ctx context.Context, cmd models.CreateCampaignCommand) (*models.AdCampaign, error) {
	c := cmd.Campaign
	return s.repomanager.Campaigns(s.db).Create(ctx, &c)
}

func (s *CampaignService) List(ctx context.Context) ([]*models.AdCampaign, error) {
	return s.repomanager.Campaigns(s.db).List(ctx)
}
