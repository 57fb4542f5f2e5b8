// Package sponsors stores sponsorship leads and contracts in PostgreSQL.
package sponsors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

const columns = `id, company_name, contact_name, email, phone, website, tier, notes,
		status, amount_paid, paid_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSponsor(row scanner) (*models.Sponsor, error) {
	var s models.Sponsor
	var status string
	if err := row.Scan(&s.ID, &s.CompanyName, &s.ContactName, &s.Email, &s.Phone, &s.Website, &s.Tier, &s.Notes,
		&status, &s.AmountPaid, &s.PaidAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status = models.SponsorStatus(status)
	return &s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Sponsor) (*models.Sponsor, error) {
	query :=
		`INSERT INTO sponsors (company_name, contact_name, email, phone, website, tier, notes, status, amount_paid, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.CompanyName, s.ContactName, s.Email, s.Phone, s.Website, s.Tier, s.Notes,
		string(s.Status), s.AmountPaid, s.PaidAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Sponsor, error) {
	query := `SELECT ` + columns + ` FROM sponsors WHERE id = $1`

	s, err := scanSponsor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// List returns sponsors by company name, optionally narrowed to one status.
func (r *PostgresRepository) List(ctx context.Context, status models.SponsorStatus) ([]*models.Sponsor, error) {
	query := `SELECT ` + columns + ` FROM sponsors`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY company_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Sponsor
	for rows.Next() {
		s, err := scanSponsor(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, f models.SponsorFields, paidAt *time.Time, now time.Time) error {
	query :=
		`UPDATE sponsors SET
			company_name = $2, contact_name = $3, email = $4, phone = $5, website = $6, tier = $7, notes = $8,
			status = $9, amount_paid = $10, paid_at = $11, updated_at = $12
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id,
		f.CompanyName, f.ContactName, f.Email, f.Phone, f.Website, f.Tier, f.Notes,
		string(f.Status), f.AmountPaid, paidAt, now,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) PaidTotals(ctx context.Context) (int, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount_paid), 0) FROM sponsors WHERE status = 'paid'`

	var (
		n     int
		total int64
	)
	if err := r.db.QueryRowContext(ctx, query).Scan(&n, &total); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return n, total, nil
}
