package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/audit"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

// RegistrationDetail is a registration with its audit trail and the emails
// sent about it, newest first.
type RegistrationDetail struct {
	Registration *models.Registration
	Audit        []*models.AuditLogEntry
	Emails       []*models.EmailLog
}

type RegistrationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    *Notifier
	logger      logging.Logger
	now         func() time.Time
}

func NewRegistrationService(db *sql.DB, m repomanager.RepositoryManager, notifier *Notifier, logger logging.Logger) *RegistrationService {
	return &RegistrationService{
		db:          db,
		repomanager: m,
		notifier:    notifier,
		logger:      logger.With("module", "registrations"),
		now:         time.Now,
	}
}

func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]*models.Registration, error) {
	return s.repomanager.Registrations(s.db).List(ctx, filter)
}

func (s *RegistrationService) Get(ctx context.Context, id string) (*RegistrationDetail, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	reg, err := s.repomanager.Registrations(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.repomanager.AuditLog(s.db).List(ctx, models.AuditRegistration, id)
	if err != nil {
		return nil, err
	}

	emails, err := s.repomanager.EmailLog(s.db).List(ctx, models.EmailLogFilter{RegistrationID: id})
	if err != nil {
		return nil, err
	}

	return &RegistrationDetail{Registration: reg, Audit: entries, Emails: emails}, nil
}

// Create stores an admin's manual entry. It goes through the same award
// check as an edit and stamps paid_at when entered as paid.
func (s *RegistrationService) Create(ctx context.Context, cmd models.CreateRegistrationCommand) (*models.Registration, error) {
	repo := s.repomanager.Registrations(s.db)

	if err := checkAward(ctx, repo, cmd.Fields.AwardCategory, ""); err != nil {
		return nil, err
	}

	paidAt := models.NextPaidAt(false, cmd.Fields.PaymentStatus == models.PaymentPaid, nil, s.now())
	return repo.Create(ctx, models.NewRegistration(cmd.Fields, paidAt))
}

// Update applies an admin edit in one transaction: award pre-check, paid_at
// pairing, one UPDATE, then one audit entry listing the changed columns.
// Nothing is appended when no column changed, and a failed append rolls the
// UPDATE back. A nil actorID records a system change.
func (s *RegistrationService) Update(ctx context.Context, cmd models.UpdateRegistrationCommand, actorID *string) (*models.Registration, error) {
	if err := validateID(cmd.ID); err != nil {
		return nil, err
	}

	var reg *models.Registration
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Registrations(tx)

		current, err := repo.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		before, after := current.Editable(), cmd.Fields

		if err := checkAward(ctx, repo, after.AwardCategory, current.ID); err != nil {
			return err
		}

		now := s.now()
		paidAt := models.NextPaidAt(
			before.PaymentStatus == models.PaymentPaid,
			after.PaymentStatus == models.PaymentPaid,
			current.PaidAt, now)

		if err := repo.Update(ctx, cmd.ID, after, paidAt, now); err != nil {
			return err
		}

		changes := audit.Diff(before.Snapshot(), after.Snapshot())
		if len(changes) > 0 {
			err := s.repomanager.AuditLog(tx).Append(ctx, models.AuditRegistration, &models.AuditLogEntry{
				EntityID: cmd.ID,
				ActorID:  actorID,
				Action:   models.AuditUpdate,
				Changes:  changes,
			})
			if err != nil {
				return fmt.Errorf("append audit entry: %w", err)
			}
		}

		reg, err = repo.Get(ctx, cmd.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// SetCheckedIn toggles the check-in flag and records it in one transaction.
// Setting the current value again is a no-op.
func (s *RegistrationService) SetCheckedIn(ctx context.Context, id string, checkedIn bool, actorID *string) (*models.Registration, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var reg *models.Registration
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Registrations(tx)

		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.CheckedIn == checkedIn {
			reg = current
			return nil
		}

		now := s.now()
		var at *time.Time
		if checkedIn {
			at = &now
		}
		if err := repo.SetCheckedIn(ctx, id, checkedIn, at, now); err != nil {
			return err
		}

		err = s.repomanager.AuditLog(tx).Append(ctx, models.AuditRegistration, &models.AuditLogEntry{
			EntityID: id,
			ActorID:  actorID,
			Action:   models.AuditCheckIn,
			Changes:  models.Changes{"checked_in": {Old: current.CheckedIn, New: checkedIn}},
		})
		if err != nil {
			return err
		}

		reg, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ResendConfirmation mails a paid registrant again; send errors are
// returned.
func (s *RegistrationService) ResendConfirmation(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	reg, err := s.repomanager.Registrations(s.db).Get(ctx, id)
	if err != nil {
		return err
	}
	if reg.PaymentStatus != models.PaymentPaid {
		return fmt.Errorf("%w: registration is %s, not paid", common.ErrValidation, reg.PaymentStatus)
	}

	if err := s.notifier.SendConfirmation(ctx, reg); err != nil {
		return err
	}
	s.logger.Info(ctx, "confirmation resent", "registration_id", id)
	return nil
}

// checkAward fails with an AwardConflictError when another registration
// holds category. An empty category never conflicts. The check and the
// following write are not atomic.
func checkAward(ctx context.Context, repo registrations.Repository, category, excludeID string) error {
	if category == "" {
		return nil
	}

	holder, err := repo.FindByAward(ctx, category, excludeID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return &models.AwardConflictError{Category: category, CarNumber: holder.CarNumber, Owner: holder.OwnerName()}
}
