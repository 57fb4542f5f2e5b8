package payments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carshow/internal/common"
)

// DisabledGateway rejects every call. It stands in when no Stripe keys are set.
type DisabledGateway struct{}

func (DisabledGateway) CreateCheckoutSession(context.Context, CheckoutRequest) (*CheckoutSession, error) {
	return nil, fmt.Errorf("payments: %w", common.ErrNotConfigured)
}

func (DisabledGateway) VerifyEvent([]byte, string) (*Event, error) {
	return nil, fmt.Errorf("payments: %w", common.ErrInvalidSignature)
}

func (DisabledGateway) PaymentDetails(context.Context, LookupQuery) (*PaymentDetails, error) {
	return nil, fmt.Errorf("payments: %w", common.ErrNotConfigured)
}
