// Package opschat posts short operational notices to the organizers'
// Telegram chat.
package opschat

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

// Notifier delivers a plain-text notice.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram checks the token against the Bot API before returning.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Nop drops every notice.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

func PaidRegistrationText(r *models.Registration, amount string) string {
	return fmt.Sprintf("🏁 Car #%d paid %s\n%s, %s", r.CarNumber, amount, r.OwnerName(), r.VehicleName())
}

func SponsorInquiryText(s *models.Sponsor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤝 Sponsor inquiry: %s", s.CompanyName)
	if s.ContactName != "" {
		fmt.Fprintf(&b, "\nContact: %s <%s>", s.ContactName, s.Email)
	} else {
		fmt.Fprintf(&b, "\nContact: %s", s.Email)
	}
	if s.Tier != "" {
		fmt.Fprintf(&b, "\nTier: %s", s.Tier)
	}
	return b.String()
}
