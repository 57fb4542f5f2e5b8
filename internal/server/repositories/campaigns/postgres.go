// Package campaigns stores advertising spend used by the reporting summary.
package campaigns

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.AdCampaign) (*models.AdCampaign, error) {
	query :=
		`INSERT INTO ad_campaigns (name, platform, spend_cents, started_on, ended_on, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Platform, c.SpendCents, c.StartedOn, c.EndedOn, c.Notes).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.AdCampaign, error) {
	query := `SELECT id, name, platform, spend_cents, started_on, ended_on, notes, created_at
		 FROM ad_campaigns ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AdCampaign
	for rows.Next() {
		var c models.AdCampaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Platform, &c.SpendCents, &c.StartedOn, &c.EndedOn, &c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) TotalSpend(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(spend_cents), 0) FROM ad_campaigns`).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
