// Package registrations stores vehicle registrations in PostgreSQL.
package registrations

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

const columns = `id, car_number, first_name, last_name, email, phone, hometown,
		vehicle_year, vehicle_make, vehicle_model, vehicle_color, engine_specs, modifications, story,
		payment_status, amount_paid, paid_at, award_category, checked_in, checked_in_at,
		stripe_session_id, stripe_payment_intent_id, ai_image_url, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (*models.Registration, error) {
	var r models.Registration
	var status string
	err := row.Scan(
		&r.ID, &r.CarNumber, &r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.Hometown,
		&r.VehicleYear, &r.VehicleMake, &r.VehicleModel, &r.VehicleColor, &r.EngineSpecs, &r.Modifications, &r.Story,
		&status, &r.AmountPaid, &r.PaidAt, &r.AwardCategory, &r.CheckedIn, &r.CheckedInAt,
		&r.StripeSessionID, &r.StripePaymentIntentID, &r.AIImageURL, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.PaymentStatus = models.PaymentStatus(status)
	return &r, nil
}

// Create inserts r; the store assigns id, car number and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	query :=
		`INSERT INTO registrations (first_name, last_name, email, phone, hometown,
			vehicle_year, vehicle_make, vehicle_model, vehicle_color, engine_specs, modifications, story,
			payment_status, amount_paid, paid_at, award_category)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, car_number, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		reg.FirstName, reg.LastName, reg.Email, reg.Phone, reg.Hometown,
		reg.VehicleYear, reg.VehicleMake, reg.VehicleModel, reg.VehicleColor, reg.EngineSpecs, reg.Modifications, reg.Story,
		string(reg.PaymentStatus), reg.AmountPaid, reg.PaidAt, reg.AwardCategory,
	).Scan(&reg.ID, &reg.CarNumber, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reg, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Registration, error) {
	query := `SELECT ` + columns + ` FROM registrations WHERE id = $1`

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reg, nil
}

// List returns registrations ordered by car number. Archived rows are left
// out unless the filter asks for them or selects that status explicitly.
func (r *PostgresRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]*models.Registration, error) {
	query := `SELECT ` + columns + ` FROM registrations`
	var args []any

	switch {
	case filter.Status != "":
		query += ` WHERE payment_status = $1`
		args = append(args, string(filter.Status))
	case !filter.IncludeArchived:
		query += ` WHERE payment_status <> 'archived'`
	}
	query += ` ORDER BY car_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountPaid(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE payment_status = 'paid'`

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) PaidTotals(ctx context.Context) (int, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount_paid), 0) FROM registrations WHERE payment_status = 'paid'`

	var (
		n     int
		total int64
	)
	if err := r.db.QueryRowContext(ctx, query).Scan(&n, &total); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return n, total, nil
}

// FindByAward returns a registration other than excludeID that holds
// category, or common.ErrNotFound.
func (r *PostgresRepository) FindByAward(ctx context.Context, category, excludeID string) (*models.Registration, error) {
	query := `SELECT ` + columns + ` FROM registrations
		 WHERE award_category = $1 AND id::text <> $2
		 ORDER BY car_number
		 LIMIT 1`

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, category, excludeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reg, nil
}

func (r *PostgresRepository) SetCheckoutSession(ctx context.Context, id, sessionID string, now time.Time) error {
	query := `UPDATE registrations SET stripe_session_id = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, sessionID, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

// MarkPaid is a single statement: the previous status is read under a row
// lock and paid_at is only stamped when the row was not already paid, so a
// redelivered event leaves the original timestamp in place.
func (r *PostgresRepository) MarkPaid(ctx context.Context, id, paymentIntentID string, amount int64, now time.Time) (models.PaymentStatus, error) {
	query :=
		`WITH prev AS (
			SELECT id, payment_status FROM registrations WHERE id = $1 FOR UPDATE
		 )
		 UPDATE registrations r
		 SET payment_status = 'paid',
			 stripe_payment_intent_id = $2,
			 amount_paid = $3,
			 paid_at = CASE WHEN prev.payment_status = 'paid' THEN r.paid_at ELSE $4 END,
			 updated_at = $4
		 FROM prev
		 WHERE r.id = prev.id
		 RETURNING prev.payment_status
		 `

	var prev string
	err := r.db.QueryRowContext(ctx, query, id, paymentIntentID, amount, now).Scan(&prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return models.PaymentStatus(prev), nil
}

// Update writes every editable column plus the computed paid_at.
func (r *PostgresRepository) Update(ctx context.Context, id string, f models.RegistrationFields, paidAt *time.Time, now time.Time) error {
	query :=
		`UPDATE registrations SET
			first_name = $2, last_name = $3, email = $4, phone = $5, hometown = $6,
			vehicle_year = $7, vehicle_make = $8, vehicle_model = $9, vehicle_color = $10,
			engine_specs = $11, modifications = $12, story = $13,
			payment_status = $14, amount_paid = $15, paid_at = $16, award_category = $17,
			updated_at = $18
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id,
		f.FirstName, f.LastName, f.Email, f.Phone, f.Hometown,
		f.VehicleYear, f.VehicleMake, f.VehicleModel, f.VehicleColor,
		f.EngineSpecs, f.Modifications, f.Story,
		string(f.PaymentStatus), f.AmountPaid, paidAt, f.Award(),
		now,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) SetCheckedIn(ctx context.Context, id string, checkedIn bool, at *time.Time, now time.Time) error {
	query := `UPDATE registrations SET checked_in = $2, checked_in_at = $3, updated_at = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, checkedIn, at, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) SetImageURL(ctx context.Context, id, url string, now time.Time) error {
	query := `UPDATE registrations SET ai_image_url = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, url, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}
