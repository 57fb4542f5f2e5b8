package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/config"
	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/carshow/internal/server/sheets"
)

// Summary totals paid registrations and sponsors against ad spend. Amounts
// are in minor units of Currency.
type Summary struct {
	PaidRegistrations   int       `json:"paidRegistrations"`
	MaxRegistrations    int       `json:"maxRegistrations"`
	RegistrationRevenue int64     `json:"registrationRevenue"`
	PaidSponsors        int       `json:"paidSponsors"`
	SponsorRevenue      int64     `json:"sponsorRevenue"`
	AdSpend             int64     `json:"adSpend"`
	Net                 int64     `json:"net"`
	Currency            string    `json:"currency"`
	GeneratedAt         time.Time `json:"generatedAt"`
}

type ExportResult struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Registrations int    `json:"registrations"`
	Sponsors      int    `json:"sponsors"`
}

type ReportService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	exporter         sheets.Exporter
	currency         string
	maxRegistrations int
	logger           logging.Logger
	now              func() time.Time
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager, exporter sheets.Exporter, cfg *config.Config, logger logging.Logger) *ReportService {
	return &ReportService{
		db:               db,
		repomanager:      m,
		exporter:         exporter,
		currency:         cfg.Currency,
		maxRegistrations: cfg.MaxRegistrations,
		logger:           logger.With("module", "reports"),
		now:              time.Now,
	}
}

func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	regCount, regAmount, err := s.repomanager.Registrations(s.db).PaidTotals(ctx)
	if err != nil {
		return nil, err
	}
	spCount, spAmount, err := s.repomanager.Sponsors(s.db).PaidTotals(ctx)
	if err != nil {
		return nil, err
	}
	spend, err := s.repomanager.Campaigns(s.db).TotalSpend(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		PaidRegistrations:   regCount,
		MaxRegistrations:    s.maxRegistrations,
		RegistrationRevenue: regAmount,
		PaidSponsors:        spCount,
		SponsorRevenue:      spAmount,
		AdSpend:             spend,
		Net:                 regAmount + spAmount - spend,
		Currency:            s.currency,
		GeneratedAt:         s.now().UTC(),
	}, nil
}

func (s *ReportService) EmailLogs(ctx context.Context, filter models.EmailLogFilter) ([]*models.EmailLog, error) {
	return s.repomanager.EmailLog(s.db).List(ctx, filter)
}

// ExportToSheets overwrites the Registrations, Sponsors and Summary tabs.
// Archived registrations are included.
func (s *ReportService) ExportToSheets(ctx context.Context) (*ExportResult, error) {
	regs, err := s.repomanager.Registrations(s.db).List(ctx, models.RegistrationFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	sps, err := s.repomanager.Sponsors(s.db).List(ctx, "")
	if err != nil {
		return nil, err
	}
	sum, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	tabs := []struct {
		name string
		rows [][]any
	}{
		{sheets.SheetRegistrations, s.registrationRows(regs)},
		{sheets.SheetSponsors, s.sponsorRows(sps)},
		{sheets.SheetSummary, s.summaryRows(sum)},
	}
	for _, tab := range tabs {
		if err := s.exporter.ReplaceSheet(ctx, tab.name, tab.rows); err != nil {
			return nil, fmt.Errorf("export %s: %w", tab.name, err)
		}
	}

	s.logger.Info(ctx, "report exported", "registrations", len(regs), "sponsors", len(sps))
	return &ExportResult{
		SpreadsheetID: s.exporter.SpreadsheetID(),
		Registrations: len(regs),
		Sponsors:      len(sps),
	}, nil
}

func (s *ReportService) registrationRows(regs []*models.Registration) [][]any {
	rows := [][]any{{"Car #", "Owner", "Email", "Hometown", "Vehicle", "Status", "Paid", "Paid at", "Award", "Checked in"}}
	for _, r := range regs {
		rows = append(rows, []any{
			r.CarNumber, r.OwnerName(), r.Email, r.Hometown, r.VehicleName(),
			string(r.PaymentStatus), mail.FormatCents(r.AmountPaid, s.currency), formatTime(r.PaidAt),
			deref(r.AwardCategory), r.CheckedIn,
		})
	}
	return rows
}

func (s *ReportService) sponsorRows(sps []*models.Sponsor) [][]any {
	rows := [][]any{{"Company", "Contact", "Email", "Tier", "Status", "Paid", "Paid at"}}
	for _, sp := range sps {
		rows = append(rows, []any{
			sp.CompanyName, sp.ContactName, sp.Email, sp.Tier,
			string(sp.Status), mail.FormatCents(sp.AmountPaid, s.currency), formatTime(sp.PaidAt),
		})
	}
	return rows
}

func (s *ReportService) summaryRows(sum *Summary) [][]any {
	money := func(c int64) string { return mail.FormatCents(c, s.currency) }
	return [][]any{
		{"Metric", "Value"},
		{"Paid registrations", fmt.Sprintf("%d / %d", sum.PaidRegistrations, sum.MaxRegistrations)},
		{"Registration revenue", money(sum.RegistrationRevenue)},
		{"Paid sponsors", sum.PaidSponsors},
		{"Sponsor revenue", money(sum.SponsorRevenue)},
		{"Ad spend", money(sum.AdSpend)},
		{"Net", money(sum.Net)},
		{"Generated at", sum.GeneratedAt.Format(time.RFC3339)},
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
