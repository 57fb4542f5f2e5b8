package services

import (
	"context"

	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/tasks"
)

// Task names recorded by the dispatcher.
const (
	TaskGenerateImage        = "generate_image"
	TaskSendConfirmation     = "send_confirmation"
	TaskNotifyAdmins         = "notify_admins"
	TaskNotifySponsorInquiry = "notify_sponsor_inquiry"
)

// Mailer sends one message and records it in the email log.
// *mail.Reliable implements it.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

// Dispatcher starts a side effect without waiting for it.
// *tasks.Dispatcher implements it.
type Dispatcher interface {
	Go(ctx context.Context, name, subject string, fn tasks.Func) string
}
