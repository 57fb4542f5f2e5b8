package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/dmitrijs2005/carshow/internal/common"
)

type emailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	emails emailsAPI
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	client := resend.NewClient(apiKey)
	return &ResendSender{emails: client.Emails, from: from}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	resp, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", classify(err)
	}
	return resp.Id, nil
}

// classify wraps 429 responses with ErrRateLimited. The client reports HTTP
// failures only as text, so the status is recognised from the message.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "too many requests", "rate limit"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return fmt.Errorf("resend: %w", err)
}

// DisabledSender fails every send. It stands in when no provider is configured.
type DisabledSender struct{}

func (DisabledSender) Send(context.Context, Message) (string, error) {
	return "", fmt.Errorf("email: %w", common.ErrNotConfigured)
}
