package models

import (
	"strconv"
	"strings"
	"time"
)

// PaymentStatus is the lifecycle state of a Registration.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentArchived PaymentStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentArchived:
		return true
	}
	return false
}

// Registration is one vehicle entry in the show.
type Registration struct {
	ID        string
	CarNumber int64

	FirstName string
	LastName  string
	Email     string
	Phone     string
	Hometown  string

	VehicleYear   int
	VehicleMake   string
	VehicleModel  string
	VehicleColor  string
	EngineSpecs   string
	Modifications string
	Story         string

	PaymentStatus PaymentStatus
	AmountPaid    int64
	PaidAt        *time.Time
	AwardCategory *string

	CheckedIn   bool
	CheckedInAt *time.Time

	StripeSessionID       *string
	StripePaymentIntentID *string
	AIImageURL            *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerName is the registrant's display name.
func (r *Registration) OwnerName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// VehicleName is "year make model", e.g. "1967 Ford Mustang".
func (r *Registration) VehicleName() string {
	parts := make([]string, 0, 3)
	if r.VehicleYear > 0 {
		parts = append(parts, strconv.Itoa(r.VehicleYear))
	}
	for _, p := range []string{r.VehicleMake, r.VehicleModel} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Editable returns the admin-editable view of r. Null columns come back as
// empty strings.
func (r *Registration) Editable() RegistrationFields {
	return RegistrationFields{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Phone:         r.Phone,
		Hometown:      r.Hometown,
		VehicleYear:   r.VehicleYear,
		VehicleMake:   r.VehicleMake,
		VehicleModel:  r.VehicleModel,
		VehicleColor:  r.VehicleColor,
		EngineSpecs:   r.EngineSpecs,
		Modifications: r.Modifications,
		Story:         r.Story,
		PaymentStatus: r.PaymentStatus,
		AmountPaid:    r.AmountPaid,
		AwardCategory: deref(r.AwardCategory),
	}
}

// RegistrationFields is the set of columns an admin edit may change.
type RegistrationFields struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Hometown      string        `json:"hometown"`
	VehicleYear   int           `json:"vehicleYear"`
	VehicleMake   string        `json:"vehicleMake"`
	VehicleModel  string        `json:"vehicleModel"`
	VehicleColor  string        `json:"vehicleColor"`
	EngineSpecs   string        `json:"engineSpecs"`
	Modifications string        `json:"modifications"`
	Story         string        `json:"story"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	AmountPaid    int64         `json:"amountPaid"`
	AwardCategory string        `json:"awardCategory"`
}

// Snapshot flattens the fields into column-name keys for diffing.
func (f RegistrationFields) Snapshot() Snapshot {
	return Snapshot{
		"first_name":     f.FirstName,
		"last_name":      f.LastName,
		"email":          f.Email,
		"phone":          f.Phone,
		"hometown":       f.Hometown,
		"vehicle_year":   f.VehicleYear,
		"vehicle_make":   f.VehicleMake,
		"vehicle_model":  f.VehicleModel,
		"vehicle_color":  f.VehicleColor,
		"engine_specs":   f.EngineSpecs,
		"modifications":  f.Modifications,
		"story":          f.Story,
		"payment_status": string(f.PaymentStatus),
		"amount_paid":    f.AmountPaid,
		"award_category": f.AwardCategory,
	}
}

// Award returns the award category as a nullable column value.
func (f RegistrationFields) Award() *string {
	if f.AwardCategory == "" {
		return nil
	}
	s := f.AwardCategory
	return &s
}

// RegistrationFilter narrows a registration listing.
type RegistrationFilter struct {
	Status          PaymentStatus
	IncludeArchived bool
}

// Matches reports whether r passes the filter.
func (f RegistrationFilter) Matches(r *Registration) bool {
	if f.Status != "" {
		return r.PaymentStatus == f.Status
	}
	return f.IncludeArchived || r.PaymentStatus != PaymentArchived
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewRegistration builds an unsaved registration from f.
func NewRegistration(f RegistrationFields, paidAt *time.Time) *Registration {
	return &Registration{
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		Email:         f.Email,
		Phone:         f.Phone,
		Hometown:      f.Hometown,
		VehicleYear:   f.VehicleYear,
		VehicleMake:   f.VehicleMake,
		VehicleModel:  f.VehicleModel,
		VehicleColor:  f.VehicleColor,
		EngineSpecs:   f.EngineSpecs,
		Modifications: f.Modifications,
		Story:         f.Story,
		PaymentStatus: f.PaymentStatus,
		AmountPaid:    f.AmountPaid,
		PaidAt:        paidAt,
		AwardCategory: f.Award(),
	}
}
