package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/audit"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

type SponsorDetail struct {
	Sponsor *models.Sponsor
	Audit   []*models.AuditLogEntry
}

type SponsorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    *Notifier
	dispatcher  Dispatcher
	logger      logging.Logger
	now         func() time.Time
}

func NewSponsorService(db *sql.DB, m repomanager.RepositoryManager, notifier *Notifier, d Dispatcher, logger logging.Logger) *SponsorService {
	return &SponsorService{
		db:          db,
		repomanager: m,
		notifier:    notifier,
		dispatcher:  d,
		logger:      logger.With("module", "sponsors"),
		now:         time.Now,
	}
}

func (s *SponsorService) List(ctx context.Context, status models.SponsorStatus) ([]*models.Sponsor, error) {
	return s.repomanager.Sponsors(s.db).List(ctx, status)
}

func (s *SponsorService) Get(ctx context.Context, id string) (*SponsorDetail, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	sp, err := s.repomanager.Sponsors(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.repomanager.AuditLog(s.db).List(ctx, models.AuditSponsor, id)
	if err != nil {
		return nil, err
	}

	return &SponsorDetail{Sponsor: sp, Audit: entries}, nil
}

func (s *SponsorService) Create(ctx context.Context, cmd models.CreateSponsorCommand) (*models.Sponsor, error) {
	paidAt := models.NextPaidAt(false, cmd.Fields.Status == models.SponsorPaid, nil, s.now())
	return s.repomanager.Sponsors(s.db).Create(ctx, models.NewSponsor(cmd.Fields, paidAt))
}

// Inquire stores a public sponsorship inquiry and notifies the admins in
// the background.
func (s *SponsorService) Inquire(ctx context.Context, cmd models.CreateSponsorCommand) (*models.Sponsor, error) {
	sp, err := s.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "sponsor inquiry received", "sponsor_id", sp.ID, "company", sp.CompanyName)
	s.dispatcher.Go(ctx, TaskNotifySponsorInquiry, sp.ID, func(ctx context.Context) error {
		return s.notifier.NotifyAdminsOfSponsor(ctx, sp)
	})
	return sp, nil
}

// Update applies an audited admin edit with the same paid_at pairing as
// registrations, in one transaction. There is no uniqueness check for
// sponsors.
func (s *SponsorService) Update(ctx context.Context, cmd models.UpdateSponsorCommand, actorID *string) (*models.Sponsor, error) {
	if err := validateID(cmd.ID); err != nil {
		return nil, err
	}

	var sp *models.Sponsor
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sponsors(tx)

		current, err := repo.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		before, after := current.Editable(), cmd.Fields

		now := s.now()
		paidAt := models.NextPaidAt(
			before.Status == models.SponsorPaid,
			after.Status == models.SponsorPaid,
			current.PaidAt, now)

		if err := repo.Update(ctx, cmd.ID, after, paidAt, now); err != nil {
			return err
		}

		if changes := audit.Diff(before.Snapshot(), after.Snapshot()); len(changes) > 0 {
			err := s.repomanager.AuditLog(tx).Append(ctx, models.AuditSponsor, &models.AuditLogEntry{
				EntityID: cmd.ID,
				ActorID:  actorID,
				Action:   models.AuditUpdate,
				Changes:  changes,
			})
			if err != nil {
				return fmt.Errorf("append audit entry: %w", err)
			}
		}

		sp, err = repo.Get(ctx, cmd.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sp, nil
}
