package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/admins"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/campaigns"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/emaillog"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/sponsors"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// them against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Registrations(db dbx.DBTX) registrations.Repository
	Sponsors(db dbx.DBTX) sponsors.Repository
	Admins(db dbx.DBTX) admins.Repository
	AuditLog(db dbx.DBTX) auditlog.Repository
	EmailLog(db dbx.DBTX) emaillog.Repository
	Campaigns(db dbx.DBTX) campaigns.Repository
}
