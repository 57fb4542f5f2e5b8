// Package memstore is an in-process RepositoryManager used by service and
// handler tests. Every repository it vends shares one mutex-guarded Store
// and ignores the DBTX it is bound to.
package memstore

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/admins"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/campaigns"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/emaillog"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/sponsors"
)

type Store struct {
	mu sync.Mutex

	registrations map[string]*models.Registration
	nextCarNumber int64
	sponsors      map[string]*models.Sponsor
	admins        map[string]*models.Admin
	audit         map[models.AuditEntity][]*models.AuditLogEntry
	emails        []*models.EmailLog
	campaigns     []*models.AdCampaign

	failures map[string]error
}

func New() *Store {
	return &Store{
		registrations: make(map[string]*models.Registration),
		sponsors:      make(map[string]*models.Sponsor),
		admins:        make(map[string]*models.Admin),
		audit:         make(map[models.AuditEntity][]*models.AuditLogEntry),
		failures:      make(map[string]error),
	}
}

// FailOn makes every later call of op (e.g. "registrations.MarkPaid") return
// err. A nil err clears the failure.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// fail must be called with s.mu held.
func (s *Store) fail(op string) error {
	return s.failures[op]
}

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Registrations(dbx.DBTX) registrations.Repository { return (*registrationRepo)(s) }
func (s *Store) Sponsors(dbx.DBTX) sponsors.Repository           { return (*sponsorRepo)(s) }
func (s *Store) Admins(dbx.DBTX) admins.Repository               { return (*adminRepo)(s) }
func (s *Store) AuditLog(dbx.DBTX) auditlog.Repository           { return (*auditRepo)(s) }
func (s *Store) EmailLog(dbx.DBTX) emaillog.Repository           { return (*emailRepo)(s) }
func (s *Store) Campaigns(dbx.DBTX) campaigns.Repository         { return (*campaignRepo)(s) }
