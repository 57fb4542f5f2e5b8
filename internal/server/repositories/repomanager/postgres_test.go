package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/carshow/internal/server/repositories/admins"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/campaigns"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/emaillog"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/sponsors"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if r := m.Registrations(db); r == nil {
		t.Fatal("Registrations() nil")
	}
	if s := m.Sponsors(db); s == nil {
		t.Fatal("Sponsors() nil")
	}

	var _ registrations.Repository = m.Registrations(db)
	var _ sponsors.Repository = m.Sponsors(db)
	var _ admins.Repository = m.Admins(db)
	var _ auditlog.Repository = m.AuditLog(db)
	var _ emaillog.Repository = m.EmailLog(db)
	var _ campaigns.Repository = m.Campaigns(db)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
