package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

type AnnouncementCommand struct {
	Subject      string
	Body         string
	RecipientIDs []string
}

func NewAnnouncementCommand(subject, body string, recipientIDs []string) (AnnouncementCommand, error) {
	cmd := AnnouncementCommand{Subject: strings.TrimSpace(subject), Body: strings.TrimSpace(body)}
	if cmd.Subject == "" || cmd.Body == "" {
		return AnnouncementCommand{}, fmt.Errorf("%w: subject and body are required", common.ErrValidation)
	}

	seen := make(map[string]bool, len(recipientIDs))
	for _, id := range recipientIDs {
		if id = strings.TrimSpace(id); id != "" && !seen[id] {
			seen[id] = true
			cmd.RecipientIDs = append(cmd.RecipientIDs, id)
		}
	}
	if len(cmd.RecipientIDs) == 0 {
		return AnnouncementCommand{}, fmt.Errorf("%w: at least one recipient is required", common.ErrValidation)
	}
	return cmd, nil
}

type AnnouncementResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type AnnouncementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      Mailer
	composer    mail.Composer
	logger      logging.Logger
}

func NewAnnouncementService(db *sql.DB, m repomanager.RepositoryManager, mailer Mailer, composer mail.Composer, logger logging.Logger) *AnnouncementService {
	return &AnnouncementService{
		db:          db,
		repomanager: m,
		mailer:      mailer,
		composer:    composer,
		logger:      logger.With("module", "announcements"),
	}
}

// Send mails each recipient registration in turn. A recipient that cannot
// be loaded or mailed is counted as failed and the loop continues.
func (s *AnnouncementService) Send(ctx context.Context, cmd AnnouncementCommand) (AnnouncementResult, error) {
	var res AnnouncementResult
	repo := s.repomanager.Registrations(s.db)

	for _, id := range cmd.RecipientIDs {
		err := validateID(id)
		if err == nil {
			err = s.sendOne(ctx, repo, cmd, id)
		}
		if err != nil {
			res.Failed++
			s.logger.Warn(ctx, "announcement not delivered", "registration_id", id, "error", err)
			continue
		}
		res.Sent++
	}

	s.logger.Info(ctx, "announcement sent", "subject", cmd.Subject, "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

func (s *AnnouncementService) sendOne(ctx context.Context, repo registrations.Repository, cmd AnnouncementCommand, id string) error {
	reg, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	msg, err := s.composer.Announcement(cmd.Subject, cmd.Body, reg)
	if err != nil {
		return err
	}
	_, err = s.mailer.Send(ctx, msg)
	return err
}
