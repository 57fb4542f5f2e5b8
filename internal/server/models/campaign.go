package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/carshow/internal/common"
)

// AdCampaign tracks marketing spend for the reporting summary.
type AdCampaign struct {
	ID         string
	Name       string
	Platform   string
	SpendCents int64
	StartedOn  *time.Time
	EndedOn    *time.Time
	Notes      string
	CreatedAt  time.Time
}

// CreateCampaignCommand is a validated new campaign. Dates are calendar days
// in YYYY-MM-DD form on the wire.
type CreateCampaignCommand struct {
	Campaign AdCampaign
}

func NewCreateCampaignCommand(name, platform string, spendCents int64, startedOn, endedOn, notes string) (CreateCampaignCommand, error) {
	c := AdCampaign{
		Name:       strings.TrimSpace(name),
		Platform:   strings.TrimSpace(platform),
		SpendCents: spendCents,
		Notes:      strings.TrimSpace(notes),
	}
	if c.Name == "" {
		return CreateCampaignCommand{}, fmt.Errorf("%w: campaign name is required", common.ErrValidation)
	}
	if c.SpendCents < 0 {
		return CreateCampaignCommand{}, fmt.Errorf("%w: spend must not be negative", common.ErrValidation)
	}

	var err error
	if c.StartedOn, err = parseDay("start date", startedOn); err != nil {
		return CreateCampaignCommand{}, err
	}
	if c.EndedOn, err = parseDay("end date", endedOn); err != nil {
		return CreateCampaignCommand{}, err
	}
	if c.StartedOn != nil && c.EndedOn != nil && c.EndedOn.Before(*c.StartedOn) {
		return CreateCampaignCommand{}, fmt.Errorf("%w: campaign ends before it starts", common.ErrValidation)
	}
	return CreateCampaignCommand{Campaign: c}, nil
}

func parseDay(name, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", common.ErrValidation, name)
	}
	return &t, nil
}
