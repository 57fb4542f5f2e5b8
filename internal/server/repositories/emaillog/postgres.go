// Package emaillog stores the append-only record of delivered emails.
package emaillog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, l *models.EmailLog) error {
	query :=
		`INSERT INTO email_log (recipient, email_type, subject, provider_message_id, registration_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		l.Recipient, string(l.Type), l.Subject, l.ProviderMessageID, l.RegistrationID,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns matching log rows, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter models.EmailLogFilter) ([]*models.EmailLog, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, "email_type = $"+strconv.Itoa(len(args)))
	}
	if filter.RegistrationID != "" {
		args = append(args, filter.RegistrationID)
		where = append(where, "registration_id = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, recipient, email_type, subject, provider_message_id, registration_id, created_at FROM email_log`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.EmailLog
	for rows.Next() {
		var (
			l   models.EmailLog
			typ string
		)
		if err := rows.Scan(&l.ID, &l.Recipient, &typ, &l.Subject, &l.ProviderMessageID, &l.RegistrationID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		l.Type = models.EmailType(typ)
		result = append(result, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
