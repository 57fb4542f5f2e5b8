// Package admins stores operator accounts in PostgreSQL.
package admins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

const (
	columns = `id, name, email, role, password_hash, invite_token_hash, invite_expires_at,
		accepted_at, last_login_at, created_at`

	uniqueViolation = "23505"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row scanner) (*models.Admin, error) {
	var a models.Admin
	var role string
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &role, &a.PasswordHash, &a.InviteTokenHash, &a.InviteExpiresAt,
		&a.AcceptedAt, &a.LastLoginAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a with its email lower-cased. A second admin with the same
// email yields common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	query :=
		`INSERT INTO admins (name, email, role, password_hash, invite_token_hash, invite_expires_at, accepted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	a.Email = strings.ToLower(a.Email)
	err := r.db.QueryRowContext(ctx, query,
		a.Name, a.Email, string(a.Role), a.PasswordHash, a.InviteTokenHash, a.InviteExpiresAt, a.AcceptedAt,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Admin, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM admins WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM admins WHERE lower(email) = $1`, strings.ToLower(email))
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Admin, error) {
	a, err := scanAdmin(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Admin, error) {
	return r.list(ctx, `SELECT `+columns+` FROM admins ORDER BY created_at`)
}

func (r *PostgresRepository) ListAccepted(ctx context.Context) ([]*models.Admin, error) {
	return r.list(ctx, `SELECT `+columns+` FROM admins WHERE accepted_at IS NOT NULL ORDER BY created_at`)
}

func (r *PostgresRepository) list(ctx context.Context, query string) ([]*models.Admin, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetInvite(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE admins SET invite_token_hash = $2, invite_expires_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

// Accept stores the password hash and burns the invite token.
func (r *PostgresRepository) Accept(ctx context.Context, id, passwordHash string, now time.Time) error {
	query :=
		`UPDATE admins
		 SET password_hash = $2, accepted_at = $3, invite_token_hash = NULL, invite_expires_at = NULL
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) TouchLogin(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE admins SET last_login_at = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}
