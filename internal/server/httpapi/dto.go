package httpapi

import (
	"time"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type registrationJSON struct {
	ID                    string     `json:"id"`
	CarNumber             int64      `json:"carNumber"`
	FirstName             string     `json:"firstName"`
	LastName              string     `json:"lastName"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone"`
	Hometown              string     `json:"hometown"`
	VehicleYear           int        `json:"vehicleYear"`
	VehicleMake           string     `json:"vehicleMake"`
	VehicleModel          string     `json:"vehicleModel"`
	VehicleColor          string     `json:"vehicleColor"`
	EngineSpecs           string     `json:"engineSpecs"`
	Modifications         string     `json:"modifications"`
	Story                 string     `json:"story"`
	PaymentStatus         string     `json:"paymentStatus"`
	AmountPaid            int64      `json:"amountPaid"`
	PaidAt                *time.Time `json:"paidAt"`
	AwardCategory         *string    `json:"awardCategory"`
	CheckedIn             bool       `json:"checkedIn"`
	CheckedInAt           *time.Time `json:"checkedInAt"`
	StripeSessionID       *string    `json:"stripeSessionId"`
	StripePaymentIntentID *string    `json:"stripePaymentIntentId"`
	AIImageURL            *string    `json:"aiImageUrl"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func toRegistration(r *models.Registration) registrationJSON {
	return registrationJSON{
		ID:                    r.ID,
		CarNumber:             r.CarNumber,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Email:                 r.Email,
		Phone:                 r.Phone,
		Hometown:              r.Hometown,
		VehicleYear:           r.VehicleYear,
		VehicleMake:           r.VehicleMake,
		VehicleModel:          r.VehicleModel,
		VehicleColor:          r.VehicleColor,
		EngineSpecs:           r.EngineSpecs,
		Modifications:         r.Modifications,
		Story:                 r.Story,
		PaymentStatus:         string(r.PaymentStatus),
		AmountPaid:            r.AmountPaid,
		PaidAt:                r.PaidAt,
		AwardCategory:         r.AwardCategory,
		CheckedIn:             r.CheckedIn,
		CheckedInAt:           r.CheckedInAt,
		StripeSessionID:       r.StripeSessionID,
		StripePaymentIntentID: r.StripePaymentIntentID,
		AIImageURL:            r.AIImageURL,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

type sponsorJSON struct {
	ID          string     `json:"id"`
	CompanyName string     `json:"companyName"`
	ContactName string     `json:"contactName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Website     string     `json:"website"`
	Tier        string     `json:"tier"`
	Notes       string     `json:"notes"`
	Status      string     `json:"status"`
	AmountPaid  int64      `json:"amountPaid"`
	PaidAt      *time.Time `json:"paidAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toSponsor(s *models.Sponsor) sponsorJSON {
	return sponsorJSON{
		ID:          s.ID,
		CompanyName: s.CompanyName,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Website:     s.Website,
		Tier:        s.Tier,
		Notes:       s.Notes,
		Status:      string(s.Status),
		AmountPaid:  s.AmountPaid,
		PaidAt:      s.PaidAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type auditJSON struct {
	ID        string         `json:"id"`
	ActorID   *string        `json:"actorId"`
	Action    string         `json:"action"`
	Changes   models.Changes `json:"changes"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toAudit(entries []*models.AuditLogEntry) []auditJSON {
	out := make([]auditJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditJSON{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

type emailLogJSON struct {
	ID                string    `json:"id"`
	Recipient         string    `json:"recipient"`
	Type              string    `json:"type"`
	Subject           string    `json:"subject"`
	ProviderMessageID *string   `json:"providerMessageId"`
	RegistrationID    *string   `json:"registrationId"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toEmailLogs(logs []*models.EmailLog) []emailLogJSON {
	out := make([]emailLogJSON, 0, len(logs))
	for _, l := range logs {
		out = append(out, emailLogJSON{
			ID:                l.ID,
			Recipient:         l.Recipient,
			Type:              string(l.Type),
			Subject:           l.Subject,
			ProviderMessageID: l.ProviderMessageID,
			RegistrationID:    l.RegistrationID,
			CreatedAt:         l.CreatedAt,
		})
	}
	return out
}

type adminJSON struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Accepted    bool       `json:"accepted"`
	InviteUntil *time.Time `json:"inviteExpiresAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toAdmin(a *models.Admin) adminJSON {
	return adminJSON{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        string(a.Role),
		Accepted:    a.Accepted(),
		InviteUntil: a.InviteExpiresAt,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}

type campaignJSON struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Platform   string    `json:"platform"`
	SpendCents int64     `json:"spendCents"`
	StartedOn  string    `json:"startedOn,omitempty"`
	EndedOn    string    `json:"endedOn,omitempty"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toCampaign(c *models.AdCampaign) campaignJSON {
	day := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.DateOnly)
	}
	return campaignJSON{
		ID:         c.ID,
		Name:       c.Name,
		Platform:   c.Platform,
		SpendCents: c.SpendCents,
		StartedOn:  day(c.StartedOn),
		EndedOn:    day(c.EndedOn),
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
	}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
