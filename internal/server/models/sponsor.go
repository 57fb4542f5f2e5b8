package models

import "time"

// SponsorStatus is the position of a sponsor in the sales funnel. Admin
// edits may set any value.
type SponsorStatus string

const (
	SponsorProspect SponsorStatus = "prospect"
	SponsorInquired SponsorStatus = "inquired"
	SponsorEngaged  SponsorStatus = "engaged"
	SponsorPaid     SponsorStatus = "paid"
)

func (s SponsorStatus) Valid() bool {
	switch s {
	case SponsorProspect, SponsorInquired, SponsorEngaged, SponsorPaid:
		return true
	}
	return false
}

type Sponsor struct {
	ID          string
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Website     string
	Tier        string
	Notes       string
	Status      SponsorStatus
	AmountPaid  int64
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *Sponsor) Editable() SponsorFields {
	return SponsorFields{
		CompanyName: s.CompanyName,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Website:     s.Website,
		Tier:        s.Tier,
		Notes:       s.Notes,
		Status:      s.Status,
		AmountPaid:  s.AmountPaid,
	}
}

// SponsorFields is the set of sponsor columns an admin edit may change.
type SponsorFields struct {
	CompanyName string        `json:"companyName"`
	ContactName string        `json:"contactName"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Website     string        `json:"website"`
	Tier        string        `json:"tier"`
	Notes       string        `json:"notes"`
	Status      SponsorStatus `json:"status"`
	AmountPaid  int64         `json:"amountPaid"`
}

func (f SponsorFields) Snapshot() Snapshot {
	return Snapshot{
		"company_name": f.CompanyName,
		"contact_name": f.ContactName,
		"email":        f.Email,
		"phone":        f.Phone,
		"website":      f.Website,
		"tier":         f.Tier,
		"notes":        f.Notes,
		"status":       string(f.Status),
		"amount_paid":  f.AmountPaid,
	}
}

func NewSponsor(f SponsorFields, paidAt *time.Time) *Sponsor {
	return &Sponsor{
		CompanyName: f.CompanyName,
		ContactName: f.ContactName,
		Email:       f.Email,
		Phone:       f.Phone,
		Website:     f.Website,
		Tier:        f.Tier,
		Notes:       f.Notes,
		Status:      f.Status,
		AmountPaid:  f.AmountPaid,
		PaidAt:      paidAt,
	}
}
