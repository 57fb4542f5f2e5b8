// Package mail sends transactional email through an external provider and
// wraps it with bounded retry and an EmailLog record of every delivery.
package mail

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

// ErrRateLimited marks provider errors worth retrying.
var ErrRateLimited = errors.New("email provider rate limit")

// Message is one HTML email to one recipient. Type and RegistrationID are
// only used for the EmailLog row.
type Message struct {
	To             string
	Subject        string
	HTML           string
	Type           models.EmailType
	RegistrationID *string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
