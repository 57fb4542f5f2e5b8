// Package payments defines the payment gateway the fulfillment pipeline
// talks to: hosted checkout sessions, signed webhook events and read-only
// payment lookups.
package payments

import (
	"context"
	"time"
)

// EventCheckoutCompleted is the only event type that changes state.
const EventCheckoutCompleted = "checkout.session.completed"

type CheckoutRequest struct {
	AmountCents   int64
	Currency      string
	ProductName   string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	// ReferenceID is echoed back as the session's client reference.
	ReferenceID string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook event. Session fields are only filled for
// checkout session events.
type Event struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	AmountTotal     int64
	Metadata        map[string]string
}

// LookupQuery selects a payment by intent id or by checkout session id.
type LookupQuery struct {
	PaymentIntentID string
	SessionID       string
}

type PaymentDetails struct {
	PaymentIntentID string          `json:"paymentIntentId"`
	SessionID       string          `json:"sessionId,omitempty"`
	Status          string          `json:"status"`
	Amount          int64           `json:"amount"`
	AmountReceived  int64           `json:"amountReceived"`
	Currency        string          `json:"currency"`
	Created         time.Time       `json:"created"`
	Card            *CardDetails    `json:"card,omitempty"`
	Billing         *BillingDetails `json:"billing,omitempty"`
	Risk            *RiskDetails    `json:"risk,omitempty"`
	Fee             *FeeDetails     `json:"fee,omitempty"`
	Refund          RefundDetails   `json:"refund"`
	Disputed        bool            `json:"disputed"`
	ReceiptURL      string          `json:"receiptUrl,omitempty"`
}

type CardDetails struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
	Country  string `json:"country,omitempty"`
	Funding  string `json:"funding,omitempty"`
}

type BillingDetails struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type RiskDetails struct {
	Level         string `json:"level"`
	Score         int64  `json:"score"`
	NetworkStatus string `json:"networkStatus,omitempty"`
	SellerMessage string `json:"sellerMessage,omitempty"`
}

type FeeDetails struct {
	Fee int64 `json:"fee"`
	Net int64 `json:"net"`
}

type RefundDetails struct {
	AmountRefunded int64 `json:"amountRefunded"`
	Refunded       bool  `json:"refunded"`
}

// Gateway is implemented by stripegw.Gateway. VerifyEvent returns
// common.ErrInvalidSignature for payloads that fail verification.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyEvent(payload []byte, signature string) (*Event, error)
	PaymentDetails(ctx context.Context, q LookupQuery) (*PaymentDetails, error)
}
