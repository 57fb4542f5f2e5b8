package models

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/carshow/internal/common"
)

const (
	minVehicleYear = 1886
	maxVehicleYear = 2100
)

// CheckoutCommand is a public registration request that will be sent to
// payment.
type CheckoutCommand struct {
	Fields RegistrationFields
}

// NewCheckoutCommand trims and validates a public registration. The status
// and amount fields are ignored; checkouts always start pending.
func NewCheckoutCommand(f RegistrationFields) (CheckoutCommand, error) {
	f = trimRegistration(f)
	f.PaymentStatus = PaymentPending
	f.AmountPaid = 0
	f.AwardCategory = ""

	var missing []string
	for _, field := range []struct{ name, value string }{
		{"first name", f.FirstName},
		{"last name", f.LastName},
		{"email", f.Email},
		{"vehicle make", f.VehicleMake},
		{"vehicle model", f.VehicleModel},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if f.VehicleYear <= 0 {
		missing = append(missing, "vehicle year")
	}
	if len(missing) > 0 {
		return CheckoutCommand{}, fmt.Errorf("%w: missing %s", common.ErrValidation, strings.Join(missing, ", "))
	}
	if err := validateRegistration(f); err != nil {
		return CheckoutCommand{}, err
	}
	return CheckoutCommand{Fields: f}, nil
}

// CreateRegistrationCommand is an admin's manual entry.
type CreateRegistrationCommand struct {
	Fields RegistrationFields
}

func NewCreateRegistrationCommand(f RegistrationFields) (CreateRegistrationCommand, error) {
	f = trimRegistration(f)
	if f.PaymentStatus == "" {
		f.PaymentStatus = PaymentPending
	}
	if err := validateRegistration(f); err != nil {
		return CreateRegistrationCommand{}, err
	}
	return CreateRegistrationCommand{Fields: f}, nil
}

// UpdateRegistrationCommand replaces every editable column of one
// registration.
type UpdateRegistrationCommand struct {
	ID     string
	Fields RegistrationFields
}

func NewUpdateRegistrationCommand(id string, f RegistrationFields) (UpdateRegistrationCommand, error) {
	if strings.TrimSpace(id) == "" {
		return UpdateRegistrationCommand{}, fmt.Errorf("%w: id is required", common.ErrValidation)
	}
	f = trimRegistration(f)
	if err := validateRegistration(f); err != nil {
		return UpdateRegistrationCommand{}, err
	}
	return UpdateRegistrationCommand{ID: id, Fields: f}, nil
}

// CreateSponsorCommand adds a sponsor lead.
type CreateSponsorCommand struct {
	Fields SponsorFields
}

func NewCreateSponsorCommand(f SponsorFields) (CreateSponsorCommand, error) {
	f = trimSponsor(f)
	if f.Status == "" {
		f.Status = SponsorProspect
	}
	if err := validateSponsor(f); err != nil {
		return CreateSponsorCommand{}, err
	}
	return CreateSponsorCommand{Fields: f}, nil
}

// NewSponsorInquiryCommand builds the sponsor created by the public inquiry
// form. Status is always inquired and nothing is paid yet.
func NewSponsorInquiryCommand(f SponsorFields) (CreateSponsorCommand, error) {
	f.Status = SponsorInquired
	f.AmountPaid = 0
	if strings.TrimSpace(f.Email) == "" {
		return CreateSponsorCommand{}, fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	return NewCreateSponsorCommand(f)
}

type UpdateSponsorCommand struct {
	ID     string
	Fields SponsorFields
}

func NewUpdateSponsorCommand(id string, f SponsorFields) (UpdateSponsorCommand, error) {
	if strings.TrimSpace(id) == "" {
		return UpdateSponsorCommand{}, fmt.Errorf("%w: id is required", common.ErrValidation)
	}
	f = trimSponsor(f)
	if err := validateSponsor(f); err != nil {
		return UpdateSponsorCommand{}, err
	}
	return UpdateSponsorCommand{ID: id, Fields: f}, nil
}

func trimRegistration(f RegistrationFields) RegistrationFields {
	for _, p := range []*string{
		&f.FirstName, &f.LastName, &f.Email, &f.Phone, &f.Hometown,
		&f.VehicleMake, &f.VehicleModel, &f.VehicleColor, &f.EngineSpecs,
		&f.Modifications, &f.Story, &f.AwardCategory,
	} {
		*p = strings.TrimSpace(*p)
	}
	f.Email = strings.ToLower(f.Email)
	return f
}

func trimSponsor(f SponsorFields) SponsorFields {
	for _, p := range []*string{
		&f.CompanyName, &f.ContactName, &f.Email, &f.Phone, &f.Website, &f.Tier, &f.Notes,
	} {
		*p = strings.TrimSpace(*p)
	}
	f.Email = strings.ToLower(f.Email)
	return f
}

func validateRegistration(f RegistrationFields) error {
	if f.FirstName == "" || f.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", common.ErrValidation)
	}
	if err := validateEmail(f.Email); err != nil {
		return err
	}
	if f.VehicleYear != 0 && (f.VehicleYear < minVehicleYear || f.VehicleYear > maxVehicleYear) {
		return fmt.Errorf("%w: vehicle year %d out of range", common.ErrValidation, f.VehicleYear)
	}
	if !f.PaymentStatus.Valid() {
		return fmt.Errorf("%w: unknown payment status %q", common.ErrValidation, f.PaymentStatus)
	}
	if f.AmountPaid < 0 {
		return fmt.Errorf("%w: amount paid must not be negative", common.ErrValidation)
	}
	return nil
}

func validateSponsor(f SponsorFields) error {
	if f.CompanyName == "" {
		return fmt.Errorf("%w: company name is required", common.ErrValidation)
	}
	if f.Email != "" {
		if err := validateEmail(f.Email); err != nil {
			return err
		}
	}
	if !f.Status.Valid() {
		return fmt.Errorf("%w: unknown sponsor status %q", common.ErrValidation, f.Status)
	}
	if f.AmountPaid < 0 {
		return fmt.Errorf("%w: amount paid must not be negative", common.ErrValidation)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", common.ErrValidation, email)
	}
	return nil
}

// InviteAdminCommand creates an admin account and mails an invite.
type InviteAdminCommand struct {
	Name  string
	Email string
	Role  Role
}

func NewInviteAdminCommand(name, email string, role Role) (InviteAdminCommand, error) {
	cmd := InviteAdminCommand{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Role:  role,
	}
	if cmd.Role == "" {
		cmd.Role = RoleOrganizer
	}
	if cmd.Name == "" {
		return InviteAdminCommand{}, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if err := validateEmail(cmd.Email); err != nil {
		return InviteAdminCommand{}, err
	}
	if !cmd.Role.Valid() {
		return InviteAdminCommand{}, fmt.Errorf("%w: unknown role %q", common.ErrValidation, cmd.Role)
	}
	return cmd, nil
}
