package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/emaillog"
)

const (
	MaxAttempts      = 3
	DefaultBaseDelay = 1500 * time.Millisecond
)

// linearBackOff waits attempt × base before each retry.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.base
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// Reliable retries rate-limited sends and records every delivered message
// in the email log. Other errors fail on the first attempt.
type Reliable struct {
	sender    Sender
	logs      emaillog.Repository
	logger    logging.Logger
	baseDelay time.Duration

	// notify observes each scheduled retry.
	notify backoff.Notify
}

func NewReliable(sender Sender, logs emaillog.Repository, baseDelay time.Duration, logger logging.Logger) *Reliable {
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Reliable{
		sender:    sender,
		logs:      logs,
		logger:    logger.With("module", "mail"),
		baseDelay: baseDelay,
	}
}

// Send delivers msg and returns the provider message id. Once delivered, a
// failure to write the log row is logged but not returned, so callers never
// resend a message that already went out.
func (r *Reliable) Send(ctx context.Context, msg Message) (string, error) {
	attempt := 0
	op := func() (string, error) {
		attempt++
		id, err := r.sender.Send(ctx, msg)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, ErrRateLimited) {
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Warn(ctx, "email rate limited, retrying",
			"to", msg.To, "type", string(msg.Type), "attempt", attempt, "wait", wait.String())
		if r.notify != nil {
			r.notify(err, wait)
		}
	}

	id, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&linearBackOff{base: r.baseDelay}),
		backoff.WithMaxTries(MaxAttempts),
		backoff.WithNotify(notify),
	)
	if err != nil {
		r.logger.Error(ctx, "email send failed",
			"to", msg.To, "type", string(msg.Type), "attempts", attempt, "error", err)
		return "", fmt.Errorf("send %s email to %s: %w", msg.Type, msg.To, err)
	}

	entry := &models.EmailLog{
		Recipient:         msg.To,
		Type:              msg.Type,
		Subject:           msg.Subject,
		ProviderMessageID: &id,
		RegistrationID:    msg.RegistrationID,
	}
	if err := r.logs.Append(ctx, entry); err != nil {
		r.logger.Error(ctx, "email log append failed", "to", msg.To, "type", string(msg.Type), "error", err)
	}

	return id, nil
}
