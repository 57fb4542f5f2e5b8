package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/auth"
	"github.com/dmitrijs2005/carshow/internal/server/config"
	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

const inviteTokenBytes = 32

type AdminService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	mailer          Mailer
	composer        mail.Composer
	jwtSecret       []byte
	sessionValidity time.Duration
	inviteValidity  time.Duration
	logger          logging.Logger
	now             func() time.Time
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, mailer Mailer, composer mail.Composer, cfg *config.Config, logger logging.Logger) *AdminService {
	return &AdminService{
		db:              db,
		repomanager:     m,
		mailer:          mailer,
		composer:        composer,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
		inviteValidity:  cfg.InviteValidityDuration,
		logger:          logger.With("module", "admins"),
		now:             time.Now,
	}
}

func (s *AdminService) List(ctx context.Context) ([]*models.Admin, error) {
	return s.repomanager.Admins(s.db).List(ctx)
}

// Invite creates the admin, or reuses a pending one with the same email,
// and mails a fresh invite. An accepted admin yields
// common.ErrAlreadyAccepted.
func (s *AdminService) Invite(ctx context.Context, cmd models.InviteAdminCommand) (*models.Admin, error) {
	repo := s.repomanager.Admins(s.db)

	a, err := repo.GetByEmail(ctx, cmd.Email)
	switch {
	case errors.Is(err, common.ErrNotFound):
		a, err = repo.Create(ctx, &models.Admin{Name: cmd.Name, Email: cmd.Email, Role: cmd.Role})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case a.Accepted():
		return nil, fmt.Errorf("%s: %w", a.Email, common.ErrAlreadyAccepted)
	}

	if err := s.sendInvite(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ResendInvite issues a new token for a pending admin. The previous link
// stops working.
func (s *AdminService) ResendInvite(ctx context.Context, email string) (*models.Admin, error) {
	a, err := s.repomanager.Admins(s.db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if a.Accepted() {
		return nil, fmt.Errorf("%s: %w", a.Email, common.ErrAlreadyAccepted)
	}

	if err := s.sendInvite(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdminService) sendInvite(ctx context.Context, a *models.Admin) error {
	token, err := common.MakeRandHexString(inviteTokenBytes)
	if err != nil {
		return fmt.Errorf("invite token: %w", err)
	}
	expires := s.now().Add(s.inviteValidity)

	if err := s.repomanager.Admins(s.db).SetInvite(ctx, a.ID, common.HashToken(token), expires); err != nil {
		return err
	}

	msg, err := s.composer.Invite(a, auth.EncodeInviteCode(a.ID, token), expires)
	if err != nil {
		return fmt.Errorf("compose invite: %w", err)
	}
	if _, err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}

	s.logger.Info(ctx, "admin invite sent", "admin_id", a.ID)
	return nil
}

// CheckInvite resolves an invite code without redeeming it.
func (s *AdminService) CheckInvite(ctx context.Context, code string) (*models.Admin, error) {
	adminID, token, err := auth.DecodeInviteCode(code)
	if err != nil {
		return nil, err
	}
	if err := validateID(adminID); err != nil {
		return nil, common.ErrInvalidToken
	}

	a, err := s.repomanager.Admins(s.db).Get(ctx, adminID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if a.Accepted() {
		return nil, common.ErrAlreadyAccepted
	}
	if a.InviteTokenHash == nil ||
		subtle.ConstantTimeCompare([]byte(*a.InviteTokenHash), []byte(common.HashToken(token))) != 1 {
		return nil, common.ErrInvalidToken
	}
	if a.InviteExpiresAt == nil || !s.now().Before(*a.InviteExpiresAt) {
		return nil, common.ErrInviteExpired
	}
	return a, nil
}

// AcceptInvite redeems the one-time code and sets the admin's password.
func (s *AdminService) AcceptInvite(ctx context.Context, code, password string) (*models.Admin, error) {
	a, err := s.CheckInvite(ctx, code)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Admins(s.db)
	if err := repo.Accept(ctx, a.ID, hash, s.now()); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "admin invite accepted", "admin_id", a.ID)
	return repo.Get(ctx, a.ID)
}

// Login checks the password and returns a session token. Unknown emails
// and wrong passwords both yield common.ErrUnauthorized.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Admins(s.db)

	a, err := repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, common.ErrNotFound) {
		return "", common.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}

	if a.PasswordHash == nil || !auth.CheckPassword(*a.PasswordHash, password) {
		return "", common.ErrUnauthorized
	}

	if err := repo.TouchLogin(ctx, a.ID, s.now()); err != nil {
		return "", err
	}

	return auth.GenerateToken(a.ID, a.Role, s.jwtSecret, s.sessionValidity)
}

// Authenticate validates a session token.
func (s *AdminService) Authenticate(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// CreateAccepted creates an admin that can log in immediately. It is used
// to bootstrap the first account from the CLI.
func (s *AdminService) CreateAccepted(ctx context.Context, cmd models.InviteAdminCommand, password string) (*models.Admin, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return s.repomanager.Admins(s.db).Create(ctx, &models.Admin{
		Name:         cmd.Name,
		Email:        cmd.Email,
		Role:         cmd.Role,
		PasswordHash: &hash,
		AcceptedAt:   &now,
	})
}
