package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/dbx"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/audit"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

// FulfillmentService turns verified payment events into paid registrations
// and starts the follow-up work.
type FulfillmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     payments.Gateway
	dispatcher  Dispatcher
	notifier    *Notifier
	images      *ImageService
	logger      logging.Logger
	now         func() time.Time
}

func NewFulfillmentService(db *sql.DB, m repomanager.RepositoryManager, gateway payments.Gateway, d Dispatcher,
	notifier *Notifier, images *ImageService, logger logging.Logger) *FulfillmentService {
	return &FulfillmentService{
		db:          db,
		repomanager: m,
		gateway:     gateway,
		dispatcher:  d,
		notifier:    notifier,
		images:      images,
		logger:      logger.With("module", "fulfillment"),
		now:         time.Now,
	}
}

// HandlePaymentCompleted verifies a webhook delivery and, for a completed
// checkout, marks the registration paid. It returns once the change is
// committed; image generation, the confirmation email and the admin
// notifications run as separate tasks. Redelivered events leave the row
// unchanged but start the tasks again.
//
// Only a signature failure (common.ErrInvalidSignature) or a store error is
// returned. Events for other types, without a registration id, or for an
// unknown registration are accepted and ignored.
func (s *FulfillmentService) HandlePaymentCompleted(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.VerifyEvent(payload, signature)
	if err != nil {
		s.logger.Warn(ctx, "webhook rejected", "error", err)
		return err
	}

	if ev.Type != payments.EventCheckoutCompleted {
		s.logger.Debug(ctx, "webhook event ignored", "event_id", ev.ID, "type", ev.Type)
		return nil
	}

	regID := ev.Metadata[common.RegistrationIDMetadataKey]
	if regID == "" {
		s.logger.Warn(ctx, "checkout completed without registration id", "event_id", ev.ID, "session_id", ev.SessionID)
		return nil
	}
	if _, err := uuid.Parse(regID); err != nil {
		s.logger.Warn(ctx, "checkout completed with malformed registration id", "event_id", ev.ID, "registration_id", regID)
		return nil
	}

	reg, transitioned, err := s.markPaid(ctx, regID, ev)
	if errors.Is(err, common.ErrNotFound) {
		s.logger.Warn(ctx, "checkout completed for unknown registration", "event_id", ev.ID, "registration_id", regID)
		return nil
	}
	if err != nil {
		s.logger.Error(ctx, "mark paid failed", "registration_id", regID, "error", err)
		return err
	}

	s.logger.Info(ctx, "registration paid",
		"registration_id", reg.ID, "car_number", reg.CarNumber, "event_id", ev.ID, "first_delivery", transitioned)

	s.dispatch(ctx, reg)
	return nil
}

// markPaid applies the transition and, when the row was not already paid,
// appends a system audit entry in the same transaction.
func (s *FulfillmentService) markPaid(ctx context.Context, id string, ev *payments.Event) (reg *models.Registration, transitioned bool, err error) {
	now := s.now()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Registrations(tx)

		before, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		prev, err := repo.MarkPaid(ctx, id, ev.PaymentIntentID, ev.AmountTotal, now)
		if err != nil {
			return err
		}

		reg, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}

		if prev == models.PaymentPaid {
			return nil
		}
		transitioned = true

		changes := audit.Diff(before.Editable().Snapshot(), reg.Editable().Snapshot())
		changes["payment_status"] = models.FieldChange{Old: string(prev), New: string(models.PaymentPaid)}

		return s.repomanager.AuditLog(tx).Append(ctx, models.AuditRegistration, &models.AuditLogEntry{
			EntityID: id,
			Action:   models.AuditPayment,
			Changes:  changes,
		})
	})

	return reg, transitioned, err
}

func (s *FulfillmentService) dispatch(ctx context.Context, reg *models.Registration) {
	s.dispatcher.Go(ctx, TaskGenerateImage, reg.ID, func(ctx context.Context) error {
		_, err := s.images.Generate(ctx, reg.ID)
		return err
	})
	s.dispatcher.Go(ctx, TaskSendConfirmation, reg.ID, func(ctx context.Context) error {
		return s.notifier.SendConfirmation(ctx, reg)
	})
	s.dispatcher.Go(ctx, TaskNotifyAdmins, reg.ID, func(ctx context.Context) error {
		return s.notifier.NotifyAdminsOfRegistration(ctx, reg)
	})
}
