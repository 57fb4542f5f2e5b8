package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/config"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

type Capacity struct {
	Paid      int `json:"paid"`
	Max       int `json:"max"`
	Remaining int `json:"remaining"`
}

type CheckoutService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	gateway          payments.Gateway
	maxRegistrations int
	priceCents       int64
	currency         string
	eventName        string
	baseURL          string
	logger           logging.Logger
}

func NewCheckoutService(db *sql.DB, m repomanager.RepositoryManager, gateway payments.Gateway, cfg *config.Config, logger logging.Logger) *CheckoutService {
	return &CheckoutService{
		db:               db,
		repomanager:      m,
		gateway:          gateway,
		maxRegistrations: cfg.MaxRegistrations,
		priceCents:       cfg.RegistrationPriceCents,
		currency:         cfg.Currency,
		eventName:        cfg.EventName,
		baseURL:          strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:           logger.With("module", "checkout"),
	}
}

// CreateCheckout stores a pending registration and returns the hosted
// checkout URL for it. The capacity check and the insert are separate
// statements, so two requests at the boundary can both pass. A row
// inserted before a later failure is left pending.
func (s *CheckoutService) CreateCheckout(ctx context.Context, cmd models.CheckoutCommand) (string, error) {
	repo := s.repomanager.Registrations(s.db)

	paid, err := repo.CountPaid(ctx)
	if err != nil {
		return "", err
	}
	if paid >= s.maxRegistrations {
		return "", fmt.Errorf("%w: all %d spots are taken", common.ErrCapacityReached, s.maxRegistrations)
	}

	reg, err := repo.Create(ctx, models.NewRegistration(cmd.Fields, nil))
	if err != nil {
		return "", err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		AmountCents:   s.priceCents,
		Currency:      s.currency,
		ProductName:   s.eventName + " registration",
		Description:   fmt.Sprintf("Car #%d: %s", reg.CarNumber, reg.VehicleName()),
		CustomerEmail: reg.Email,
		SuccessURL:    s.baseURL + "/register/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.baseURL + "/register?cancelled=1",
		ReferenceID:   reg.ID,
		Metadata:      map[string]string{common.RegistrationIDMetadataKey: reg.ID},
	})
	if err != nil {
		s.logger.Error(ctx, "checkout session failed", "registration_id", reg.ID, "error", err)
		return "", err
	}

	if err := repo.SetCheckoutSession(ctx, reg.ID, session.ID, time.Now()); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "checkout started", "registration_id", reg.ID, "car_number", reg.CarNumber, "session_id", session.ID)
	return session.URL, nil
}

func (s *CheckoutService) Capacity(ctx context.Context) (*Capacity, error) {
	paid, err := s.repomanager.Registrations(s.db).CountPaid(ctx)
	if err != nil {
		return nil, err
	}
	return &Capacity{Paid: paid, Max: s.maxRegistrations, Remaining: max(s.maxRegistrations-paid, 0)}, nil
}

// PaymentDetails is a read-only lookup for the admin payment view.
func (s *CheckoutService) PaymentDetails(ctx context.Context, q payments.LookupQuery) (*payments.PaymentDetails, error) {
	return s.gateway.PaymentDetails(ctx, q)
}
