package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/opschat"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

// Notifier composes and sends the registration and sponsor emails.
type Notifier struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      Mailer
	composer    mail.Composer
	ops         opschat.Notifier
	logger      logging.Logger
}

func NewNotifier(db *sql.DB, m repomanager.RepositoryManager, mailer Mailer, composer mail.Composer, ops opschat.Notifier, logger logging.Logger) *Notifier {
	return &Notifier{
		db:          db,
		repomanager: m,
		mailer:      mailer,
		composer:    composer,
		ops:         ops,
		logger:      logger.With("module", "notifier"),
	}
}

// SendConfirmation mails the registrant. Errors are returned to the caller.
func (n *Notifier) SendConfirmation(ctx context.Context, r *models.Registration) error {
	msg, err := n.composer.Confirmation(r)
	if err != nil {
		return fmt.Errorf("compose confirmation: %w", err)
	}
	_, err = n.mailer.Send(ctx, msg)
	return err
}

// NotifyAdminsOfRegistration mails every accepted admin about a paid
// registration and posts to the ops chat.
func (n *Notifier) NotifyAdminsOfRegistration(ctx context.Context, r *models.Registration) error {
	err := n.notifyAdmins(ctx, models.EmailAdminNotification, func(a *models.Admin) (mail.Message, error) {
		return n.composer.AdminNotification(r, a)
	})
	n.postOps(ctx, opschat.PaidRegistrationText(r, mail.FormatCents(r.AmountPaid, n.composer.Currency)))
	return err
}

func (n *Notifier) NotifyAdminsOfSponsor(ctx context.Context, s *models.Sponsor) error {
	err := n.notifyAdmins(ctx, models.EmailSponsorNotification, func(a *models.Admin) (mail.Message, error) {
		return n.composer.SponsorNotification(s, a)
	})
	n.postOps(ctx, opschat.SponsorInquiryText(s))
	return err
}

// notifyAdmins sends one message per accepted admin. A failed recipient is
// logged and skipped; the returned error only reports how many failed.
func (n *Notifier) notifyAdmins(ctx context.Context, kind models.EmailType, compose func(*models.Admin) (mail.Message, error)) error {
	admins, err := n.repomanager.Admins(n.db).ListAccepted(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	failed := 0
	for _, a := range admins {
		msg, err := compose(a)
		if err == nil {
			_, err = n.mailer.Send(ctx, msg)
		}
		if err != nil {
			failed++
			n.logger.Warn(ctx, "admin notification failed", "type", string(kind), "admin_id", a.ID, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d %s emails failed", failed, len(admins), kind)
	}
	return nil
}

func (n *Notifier) postOps(ctx context.Context, text string) {
	if err := n.ops.Notify(ctx, text); err != nil {
		n.logger.Warn(ctx, "ops chat notice failed", "error", err)
	}
}
