package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
)

func newCheckout(e *testEnv) *CheckoutService {
	e.gateway.session = &payments.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}
	return NewCheckoutService(e.db, e.store, e.gateway, e.cfg, logging.Nop{})
}

func checkoutCmd(t *testing.T, email string) models.CheckoutCommand {
	t.Helper()
	cmd, err := models.NewCheckoutCommand(models.RegistrationFields{
		FirstName: "Bo", LastName: "Diaz", Email: email,
		VehicleYear: 1972, VehicleMake: "Datsun", VehicleModel: "240Z",
	})
	require.NoError(t, err)
	return cmd
}

func allRegistrations(t *testing.T, e *testEnv) []*models.Registration {
	t.Helper()
	regs, err := e.store.Registrations(e.db).List(context.Background(), models.RegistrationFilter{IncludeArchived: true})
	require.NoError(t, err)
	return regs
}

func TestCreateCheckout_Success(t *testing.T) {
	e := newTestEnv(t)
	s := newCheckout(e)

	url, err := s.CreateCheckout(context.Background(), checkoutCmd(t, "bo@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", url)

	regs := allRegistrations(t, e)
	require.Len(t, regs, 1)
	reg := regs[0]
	assert.Equal(t, models.PaymentPending, reg.PaymentStatus)
	require.NotNil(t, reg.StripeSessionID)
	assert.Equal(t, "cs_test_1", *reg.StripeSessionID)

	require.Len(t, e.gateway.requests, 1)
	req := e.gateway.requests[0]
	assert.Equal(t, int64(5000), req.AmountCents)
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, "bo@example.com", req.CustomerEmail)
	assert.Equal(t, map[string]string{common.RegistrationIDMetadataKey: reg.ID}, req.Metadata)
	assert.Equal(t, "https://show.test/register/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, "https://show.test/register?cancelled=1", req.CancelURL)
}

func TestCreateCheckout_CapacityReached(t *testing.T) {
	e := newTestEnv(t)
	e.seedPaid(t, e.cfg.MaxRegistrations)
	s := newCheckout(e)

	_, err := s.CreateCheckout(context.Background(), checkoutCmd(t, "late@example.com"))
	assert.ErrorIs(t, err, common.ErrCapacityReached)
	assert.Len(t, allRegistrations(t, e), e.cfg.MaxRegistrations, "no row inserted")
	assert.Empty(t, e.gateway.requests)
}

func TestCreateCheckout_OnlyPaidCountsTowardCapacity(t *testing.T) {
	e := newTestEnv(t)
	e.seedPaid(t, e.cfg.MaxRegistrations-1)
	for _, st := range []models.PaymentStatus{models.PaymentPending, models.PaymentRefunded, models.PaymentArchived} {
		e.seedRegistration(t, func(r *models.Registration) { r.PaymentStatus = st })
	}
	s := newCheckout(e)

	_, err := s.CreateCheckout(context.Background(), checkoutCmd(t, "ok@example.com"))
	require.NoError(t, err)

	c, err := s.Capacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Capacity{Paid: e.cfg.MaxRegistrations - 1, Max: e.cfg.MaxRegistrations, Remaining: 1}, c)
}

// The count and the insert are separate statements: checkouts started
// while one spot is left all pass, and paying them all overshoots.
func TestCreateCheckout_CapacityCheckIsNotAtomic(t *testing.T) {
	e := newTestEnv(t)
	e.seedPaid(t, e.cfg.MaxRegistrations-1)
	s := newCheckout(e)

	_, err := s.CreateCheckout(context.Background(), checkoutCmd(t, "a@example.com"))
	require.NoError(t, err)
	_, err = s.CreateCheckout(context.Background(), checkoutCmd(t, "b@example.com"))
	require.NoError(t, err)

	f := newFulfillment(e, time.Now())
	for i, r := range allRegistrations(t, e) {
		if r.PaymentStatus != models.PaymentPending {
			continue
		}
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
		body, sig := completed(t, r.ID, "pi_race_"+string(rune('a'+i)))
		require.NoError(t, f.HandlePaymentCompleted(context.Background(), body, sig))
	}
	e.waitTasks(t)

	c, err := s.Capacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, e.cfg.MaxRegistrations+1, c.Paid)
	assert.Equal(t, 0, c.Remaining)
}

func TestCreateCheckout_GatewayFailureLeavesPendingRow(t *testing.T) {
	e := newTestEnv(t)
	s := newCheckout(e)
	e.gateway.createErr = errors.New("stripe: api key expired")

	_, err := s.CreateCheckout(context.Background(), checkoutCmd(t, "bo@example.com"))
	assert.ErrorContains(t, err, "api key expired")

	regs := allRegistrations(t, e)
	require.Len(t, regs, 1)
	assert.Equal(t, models.PaymentPending, regs[0].PaymentStatus)
	assert.Nil(t, regs[0].StripeSessionID)
}

func TestCreateCheckout_StoreFailures(t *testing.T) {
	for _, op := range []string{"registrations.CountPaid", "registrations.Create", "registrations.SetCheckoutSession"} {
		t.Run(op, func(t *testing.T) {
			e := newTestEnv(t)
			s := newCheckout(e)
			e.store.FailOn(op, errors.New("db down"))

			_, err := s.CreateCheckout(context.Background(), checkoutCmd(t, "bo@example.com"))
			assert.ErrorContains(t, err, "db down")
		})
	}
}

func TestPaymentDetails_PassesThrough(t *testing.T) {
	e := newTestEnv(t)
	s := newCheckout(e)

	d, err := s.PaymentDetails(context.Background(), payments.LookupQuery{PaymentIntentID: "pi_9"})
	require.NoError(t, err)
	assert.Equal(t, "pi_9", d.PaymentIntentID)

	_, err = s.PaymentDetails(context.Background(), payments.LookupQuery{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
