package stripegw

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
)

const testSecret = "whsec_test"

type fakeSessions struct {
	newParams *stripe.CheckoutSessionParams
	getID     string
	session   *stripe.CheckoutSession
	err       error
}

func (f *fakeSessions) New(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.newParams = p
	return f.session, f.err
}

func (f *fakeSessions) Get(id string, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.getID = id
	return f.session, f.err
}

type fakeIntents struct {
	pi  *stripe.PaymentIntent
	err error
}

func (f *fakeIntents) Get(string, *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return f.pi, f.err
}

func sign(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

const completedEvent = `{
  "id": "evt_1",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_1",
    "object": "checkout.session",
    "amount_total": 5000,
    "payment_intent": "pi_1",
    "metadata": {"registration_id": "reg-1"}
  }}
}`

func TestVerifyEvent_CheckoutCompleted(t *testing.T) {
	g := &Gateway{webhookSecret: testSecret}
	header, body := sign(t, completedEvent)

	ev, err := g.VerifyEvent(body, header)
	require.NoError(t, err)
	assert.Equal(t, &payments.Event{
		ID:              "evt_1",
		Type:            payments.EventCheckoutCompleted,
		SessionID:       "cs_1",
		PaymentIntentID: "pi_1",
		AmountTotal:     5000,
		Metadata:        map[string]string{"registration_id": "reg-1"},
	}, ev)
}

func TestVerifyEvent_OtherTypeCarriesNoSession(t *testing.T) {
	g := &Gateway{webhookSecret: testSecret}
	header, body := sign(t, `{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)

	ev, err := g.VerifyEvent(body, header)
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.SessionID)
}

func TestVerifyEvent_BadSignature(t *testing.T) {
	g := &Gateway{webhookSecret: testSecret}
	_, body := sign(t, completedEvent)

	_, err := g.VerifyEvent(body, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, common.ErrInvalidSignature)

	other := &Gateway{webhookSecret: "whsec_other"}
	header, body := sign(t, completedEvent)
	_, err = other.VerifyEvent(body, header)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestCreateCheckoutSession(t *testing.T) {
	fs := &fakeSessions{session: &stripe.CheckoutSession{ID: "cs_9", URL: "https://checkout.test/cs_9"}}
	g := &Gateway{sessions: fs}

	got, err := g.CreateCheckoutSession(context.Background(), payments.CheckoutRequest{
		AmountCents:   5000,
		Currency:      "usd",
		ProductName:   "Show registration",
		CustomerEmail: "ann@example.com",
		SuccessURL:    "https://show.test/success",
		CancelURL:     "https://show.test/cancel",
		ReferenceID:   "reg-1",
		Metadata:      map[string]string{"registration_id": "reg-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, &payments.CheckoutSession{ID: "cs_9", URL: "https://checkout.test/cs_9"}, got)

	p := fs.newParams
	require.NotNil(t, p)
	assert.Equal(t, "payment", *p.Mode)
	assert.Equal(t, "ann@example.com", *p.CustomerEmail)
	assert.Equal(t, "reg-1", *p.ClientReferenceID)
	assert.Equal(t, "reg-1", p.Metadata["registration_id"])
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, int64(5000), *p.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "Show registration", *p.LineItems[0].PriceData.ProductData.Name)
}

func TestCreateCheckoutSession_Error(t *testing.T) {
	g := &Gateway{sessions: &fakeSessions{err: errors.New("boom")}}
	_, err := g.CreateCheckoutSession(context.Background(), payments.CheckoutRequest{})
	assert.ErrorContains(t, err, "boom")
}

func testIntent() *stripe.PaymentIntent {
	return &stripe.PaymentIntent{
		ID:             "pi_1",
		Status:         stripe.PaymentIntentStatusSucceeded,
		Amount:         5000,
		AmountReceived: 5000,
		Currency:       "usd",
		Created:        1700000000,
		LatestCharge: &stripe.Charge{
			ReceiptURL: "https://pay.test/receipt",
			PaymentMethodDetails: &stripe.ChargePaymentMethodDetails{
				Card: &stripe.ChargePaymentMethodDetailsCard{Last4: "4242", ExpMonth: 12, ExpYear: 2030},
			},
			BillingDetails:     &stripe.ChargeBillingDetails{Name: "Ann", Address: &stripe.Address{City: "Austin"}},
			Outcome:            &stripe.ChargeOutcome{RiskScore: 12},
			BalanceTransaction: &stripe.BalanceTransaction{Fee: 175, Net: 4825},
		},
	}
}

func TestPaymentDetails_ByIntent(t *testing.T) {
	g := &Gateway{paymentIntents: &fakeIntents{pi: testIntent()}}

	d, err := g.PaymentDetails(context.Background(), payments.LookupQuery{PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", d.PaymentIntentID)
	assert.Equal(t, "succeeded", d.Status)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), d.Created)
	require.NotNil(t, d.Card)
	assert.Equal(t, "4242", d.Card.Last4)
	assert.Equal(t, "Austin", d.Billing.City)
	assert.Equal(t, int64(12), d.Risk.Score)
	assert.Equal(t, &payments.FeeDetails{Fee: 175, Net: 4825}, d.Fee)
	assert.Equal(t, "https://pay.test/receipt", d.ReceiptURL)
}

func TestPaymentDetails_BySession(t *testing.T) {
	fs := &fakeSessions{session: &stripe.CheckoutSession{ID: "cs_1", PaymentIntent: testIntent()}}
	g := &Gateway{sessions: fs}

	d, err := g.PaymentDetails(context.Background(), payments.LookupQuery{SessionID: "cs_1"})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", fs.getID)
	assert.Equal(t, "cs_1", d.SessionID)
	assert.Equal(t, "pi_1", d.PaymentIntentID)
}

func TestPaymentDetails_Errors(t *testing.T) {
	g := &Gateway{
		sessions:       &fakeSessions{session: &stripe.CheckoutSession{ID: "cs_2"}},
		paymentIntents: &fakeIntents{err: &stripe.Error{HTTPStatusCode: 404, Msg: "No such payment_intent"}},
	}

	_, err := g.PaymentDetails(context.Background(), payments.LookupQuery{})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = g.PaymentDetails(context.Background(), payments.LookupQuery{PaymentIntentID: "pi_x"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = g.PaymentDetails(context.Background(), payments.LookupQuery{SessionID: "cs_2"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
