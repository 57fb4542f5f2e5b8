// Package stripegw implements payments.Gateway on the Stripe API.
package stripegw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
)

const chargeExpand = "latest_charge.balance_transaction"

type sessionsAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type paymentIntentsAPI interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type Gateway struct {
	sessions       sessionsAPI
	paymentIntents paymentIntentsAPI
	webhookSecret  string
}

func New(secretKey, webhookSecret string) *Gateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Gateway{
		sessions:       sc.CheckoutSessions,
		paymentIntents: sc.PaymentIntents,
		webhookSecret:  webhookSecret,
	}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	if req.Description != "" {
		params.LineItems[0].PriceData.ProductData.Description = stripe.String(req.Description)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.ReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ReferenceID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &payments.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// VerifyEvent checks the Stripe-Signature header against the endpoint
// secret. API version mismatches are tolerated; only the session fields
// used here are read.
func (g *Gateway) VerifyEvent(payload []byte, signature string) (*payments.Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
	}

	out := &payments.Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != payments.EventCheckoutCompleted {
		return out, nil
	}
	if ev.Data == nil {
		return nil, errors.New("stripe event has no data")
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = s.ID
	out.AmountTotal = s.AmountTotal
	out.Metadata = s.Metadata
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out, nil
}

// PaymentDetails resolves a session to its payment intent when needed and
// returns the intent with its latest charge and balance transaction.
func (g *Gateway) PaymentDetails(ctx context.Context, q payments.LookupQuery) (*payments.PaymentDetails, error) {
	switch {
	case q.PaymentIntentID != "":
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx
		params.AddExpand(chargeExpand)
		pi, err := g.paymentIntents.Get(q.PaymentIntentID, params)
		if err != nil {
			return nil, lookupError(err)
		}
		return details(pi, ""), nil

	case q.SessionID != "":
		params := &stripe.CheckoutSessionParams{}
		params.Context = ctx
		params.AddExpand("payment_intent." + chargeExpand)
		s, err := g.sessions.Get(q.SessionID, params)
		if err != nil {
			return nil, lookupError(err)
		}
		if s.PaymentIntent == nil {
			return nil, fmt.Errorf("session %s has no payment: %w", q.SessionID, common.ErrNotFound)
		}
		return details(s.PaymentIntent, s.ID), nil

	default:
		return nil, fmt.Errorf("%w: payment_intent_id or session_id is required", common.ErrValidation)
	}
}

func lookupError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.HTTPStatusCode == 404 {
		return fmt.Errorf("stripe: %w", common.ErrNotFound)
	}
	return fmt.Errorf("stripe lookup: %w", err)
}

func details(pi *stripe.PaymentIntent, sessionID string) *payments.PaymentDetails {
	d := &payments.PaymentDetails{
		PaymentIntentID: pi.ID,
		SessionID:       sessionID,
		Status:          string(pi.Status),
		Amount:          pi.Amount,
		AmountReceived:  pi.AmountReceived,
		Currency:        string(pi.Currency),
		Created:         time.Unix(pi.Created, 0).UTC(),
	}

	ch := pi.LatestCharge
	if ch == nil {
		return d
	}

	d.Refund = payments.RefundDetails{AmountRefunded: ch.AmountRefunded, Refunded: ch.Refunded}
	d.Disputed = ch.Disputed
	d.ReceiptURL = ch.ReceiptURL

	if pmd := ch.PaymentMethodDetails; pmd != nil && pmd.Card != nil {
		d.Card = &payments.CardDetails{
			Brand:    string(pmd.Card.Brand),
			Last4:    pmd.Card.Last4,
			ExpMonth: pmd.Card.ExpMonth,
			ExpYear:  pmd.Card.ExpYear,
			Country:  pmd.Card.Country,
			Funding:  string(pmd.Card.Funding),
		}
	}
	if b := ch.BillingDetails; b != nil {
		d.Billing = &payments.BillingDetails{Name: b.Name, Email: b.Email, Phone: b.Phone}
		if a := b.Address; a != nil {
			d.Billing.Line1, d.Billing.City, d.Billing.State = a.Line1, a.City, a.State
			d.Billing.PostalCode, d.Billing.Country = a.PostalCode, a.Country
		}
	}
	if o := ch.Outcome; o != nil {
		d.Risk = &payments.RiskDetails{
			Level:         string(o.RiskLevel),
			Score:         o.RiskScore,
			NetworkStatus: string(o.NetworkStatus),
			SellerMessage: o.SellerMessage,
		}
	}
	if bt := ch.BalanceTransaction; bt != nil {
		d.Fee = &payments.FeeDetails{Fee: bt.Fee, Net: bt.Net}
	}
	return d
}
