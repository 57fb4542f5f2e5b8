package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

var fixedNow = time.Date(2026, 6, 13, 9, 30, 0, 0, time.UTC)

func newRegistrations(e *testEnv) *RegistrationService {
	s := NewRegistrationService(e.db, e.store, e.notifier, logging.Nop{})
	s.now = func() time.Time { return fixedNow }
	return s
}

func updateCmd(t *testing.T, r *models.Registration, mutate func(f *models.RegistrationFields)) models.UpdateRegistrationCommand {
	t.Helper()
	f := r.Editable()
	mutate(&f)
	cmd, err := models.NewUpdateRegistrationCommand(r.ID, f)
	require.NoError(t, err)
	return cmd
}

func TestRegistrationUpdate_OneEntryListsEveryChangedField(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	reg := e.seedRegistration(t, nil)
	actor := uuid.NewString()

	e.expectTx(true)
	updated, err := s.Update(context.Background(), updateCmd(t, reg, func(f *models.RegistrationFields) {
		f.Phone = "555-0100"
		f.VehicleYear = 1968
		f.VehicleColor = "Highland Green"
	}), &actor)
	require.NoError(t, err)
	assert.Equal(t, 1968, updated.VehicleYear)

	entries := e.audit(t, models.AuditRegistration, reg.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditUpdate, entries[0].Action)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, actor, *entries[0].ActorID)
	assert.Equal(t, models.Changes{
		"phone":         {Old: "", New: "555-0100"},
		"vehicle_year":  {Old: 1967, New: 1968},
		"vehicle_color": {Old: "", New: "Highland Green"},
	}, entries[0].Changes)
}

func TestRegistrationUpdate_NoChangeNoEntry(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	reg := e.seedRegistration(t, nil)

	e.expectTx(true)
	_, err := s.Update(context.Background(), updateCmd(t, reg, func(*models.RegistrationFields) {}), nil)
	require.NoError(t, err)
	assert.Empty(t, e.audit(t, models.AuditRegistration, reg.ID))
}

func TestRegistrationUpdate_PaidAtPairing(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	reg := e.seedRegistration(t, nil)

	e.expectTx(true)
	paid, err := s.Update(context.Background(), updateCmd(t, reg, func(f *models.RegistrationFields) {
		f.PaymentStatus = models.PaymentPaid
		f.AmountPaid = 5000
	}), nil)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(fixedNow))

	// Editing another column keeps the stamp.
	s.now = func() time.Time { return fixedNow.Add(time.Hour) }
	e.expectTx(true)
	kept, err := s.Update(context.Background(), updateCmd(t, paid, func(f *models.RegistrationFields) { f.Story = "barn find" }), nil)
	require.NoError(t, err)
	require.NotNil(t, kept.PaidAt)
	assert.True(t, kept.PaidAt.Equal(fixedNow))

	e.expectTx(true)
	refunded, err := s.Update(context.Background(), updateCmd(t, kept, func(f *models.RegistrationFields) {
		f.PaymentStatus = models.PaymentRefunded
	}), nil)
	require.NoError(t, err)
	assert.Nil(t, refunded.PaidAt)

	// Paying again stamps the new time.
	e.expectTx(true)
	repaid, err := s.Update(context.Background(), updateCmd(t, refunded, func(f *models.RegistrationFields) {
		f.PaymentStatus = models.PaymentPaid
	}), nil)
	require.NoError(t, err)
	require.NotNil(t, repaid.PaidAt)
	assert.True(t, repaid.PaidAt.Equal(fixedNow.Add(time.Hour)))
}

func TestRegistrationUpdate_AwardUniqueness(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	holder := e.seedRegistration(t, func(r *models.Registration) {
		best := "Best in Show"
		r.AwardCategory = &best
		r.FirstName, r.LastName = "Cy", "Holt"
	})
	other := e.seedRegistration(t, nil)

	e.expectTx(false)
	_, err := s.Update(context.Background(), updateCmd(t, other, func(f *models.RegistrationFields) {
		f.AwardCategory = "Best in Show"
	}), nil)
	require.ErrorIs(t, err, common.ErrAwardTaken)

	var conflict *models.AwardConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, holder.CarNumber, conflict.CarNumber)
	assert.Equal(t, "Cy Holt", conflict.Owner)
	assert.Contains(t, err.Error(), "Best in Show")
	assert.Empty(t, e.audit(t, models.AuditRegistration, other.ID), "rejected edit is not audited")

	// The holder may save its own award, and the empty award never conflicts.
	e.expectTx(true)
	_, err = s.Update(context.Background(), updateCmd(t, holder, func(f *models.RegistrationFields) { f.Story = "restored" }), nil)
	require.NoError(t, err)
	e.expectTx(true)
	_, err = s.Update(context.Background(), updateCmd(t, other, func(f *models.RegistrationFields) { f.AwardCategory = "" }), nil)
	require.NoError(t, err)
}

func TestRegistrationUpdate_Errors(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	reg := e.seedRegistration(t, nil)

	t.Run("malformed id", func(t *testing.T) {
		cmd := updateCmd(t, reg, func(*models.RegistrationFields) {})
		cmd.ID = "42"
		_, err := s.Update(context.Background(), cmd, nil)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		cmd := updateCmd(t, reg, func(*models.RegistrationFields) {})
		cmd.ID = uuid.NewString()
		e.expectTx(false)
		_, err := s.Update(context.Background(), cmd, nil)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestRegistrationCreate(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)

	cmd, err := models.NewCreateRegistrationCommand(models.RegistrationFields{
		FirstName: "Di", LastName: "Ray", Email: "DI@Example.com ",
		VehicleYear: 1957, VehicleMake: "Chevrolet", VehicleModel: "Bel Air",
		PaymentStatus: models.PaymentPaid, AmountPaid: 5000, AwardCategory: "Best Paint",
	})
	require.NoError(t, err)

	reg, err := s.Create(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "di@example.com", reg.Email)
	require.NotNil(t, reg.PaidAt)
	assert.True(t, reg.PaidAt.Equal(fixedNow))

	_, err = s.Create(context.Background(), cmd)
	assert.ErrorIs(t, err, common.ErrAwardTaken)
}

func TestSetCheckedIn(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	reg := e.seedRegistration(t, nil)
	actor := uuid.NewString()

	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
	in, err := s.SetCheckedIn(context.Background(), reg.ID, true, &actor)
	require.NoError(t, err)
	assert.True(t, in.CheckedIn)
	require.NotNil(t, in.CheckedInAt)
	assert.True(t, in.CheckedInAt.Equal(fixedNow))

	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
	_, err = s.SetCheckedIn(context.Background(), reg.ID, true, &actor)
	require.NoError(t, err)

	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
	out, err := s.SetCheckedIn(context.Background(), reg.ID, false, &actor)
	require.NoError(t, err)
	assert.False(t, out.CheckedIn)
	assert.Nil(t, out.CheckedInAt)

	entries := e.audit(t, models.AuditRegistration, reg.ID)
	require.Len(t, entries, 2, "repeating the same value is not recorded")
	assert.Equal(t, models.AuditCheckIn, entries[0].Action)
	assert.Equal(t, models.Changes{"checked_in": {Old: true, New: false}}, entries[0].Changes)
	assert.Equal(t, models.Changes{"checked_in": {Old: false, New: true}}, entries[1].Changes)
	require.NoError(t, e.mock.ExpectationsWereMet())
}

// The rollback itself is checked against SQL in audit_tx_test.go; memstore
// does not undo writes.
func TestSetCheckedIn_AuditFailureReturnsError(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	reg := e.seedRegistration(t, nil)
	e.store.FailOn("audit.Append", errors.New("disk full"))

	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
	_, err := s.SetCheckedIn(context.Background(), reg.ID, true, nil)
	assert.ErrorContains(t, err, "disk full")
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestRegistrationGet_Detail(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	reg := e.seedRegistration(t, func(r *models.Registration) {
		now := time.Now()
		r.PaymentStatus, r.PaidAt = models.PaymentPaid, &now
	})
	other := e.seedRegistration(t, func(r *models.Registration) { r.Email = "other@example.com" })

	e.expectTx(true)
	_, err := s.Update(context.Background(), updateCmd(t, reg, func(f *models.RegistrationFields) { f.Phone = "1" }), nil)
	require.NoError(t, err)
	require.NoError(t, s.ResendConfirmation(context.Background(), reg.ID))

	d, err := s.Get(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, d.Registration.ID)
	assert.Len(t, d.Audit, 1)
	require.Len(t, d.Emails, 1)
	assert.Equal(t, models.EmailConfirmation, d.Emails[0].Type)

	d, err = s.Get(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Audit)
	assert.Empty(t, d.Emails)

	_, err = s.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResendConfirmation(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)

	pending := e.seedRegistration(t, nil)
	assert.ErrorIs(t, s.ResendConfirmation(context.Background(), pending.ID), common.ErrValidation)

	paid := e.seedRegistration(t, func(r *models.Registration) {
		r.Email = "bounce@example.com"
		r.PaymentStatus = models.PaymentPaid
	})
	e.sender.fail["bounce@example.com"] = errPermanent
	assert.ErrorIs(t, s.ResendConfirmation(context.Background(), paid.ID), errPermanent)
	assert.Empty(t, e.emails(t, models.EmailConfirmation))

	delete(e.sender.fail, "bounce@example.com")
	require.NoError(t, s.ResendConfirmation(context.Background(), paid.ID))
	assert.Len(t, e.emails(t, models.EmailConfirmation), 1)
}

func TestRegistrationList_HidesArchivedByDefault(t *testing.T) {
	e := newTestEnv(t)
	s := newRegistrations(e)
	e.seedRegistration(t, nil)
	e.seedRegistration(t, func(r *models.Registration) { r.PaymentStatus = models.PaymentArchived })

	regs, err := s.List(context.Background(), models.RegistrationFilter{})
	require.NoError(t, err)
	assert.Len(t, regs, 1)

	regs, err = s.List(context.Background(), models.RegistrationFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, regs, 2)

	regs, err = s.List(context.Background(), models.RegistrationFilter{Status: models.PaymentArchived})
	require.NoError(t, err)
	assert.Len(t, regs, 1)
}
