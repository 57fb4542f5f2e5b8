package models

import "time"

type EmailType string

const (
	EmailConfirmation        EmailType = "confirmation"
	EmailAdminNotification   EmailType = "admin_notification"
	EmailAnnouncement        EmailType = "announcement"
	EmailSponsorNotification EmailType = "sponsor_notification"
	EmailInvite              EmailType = "invite"
)

// EmailLog records a delivered message.
type EmailLog struct {
	ID                string
	Recipient         string
	Type              EmailType
	Subject           string
	ProviderMessageID *string
	RegistrationID    *string
	CreatedAt         time.Time
}

type EmailLogFilter struct {
	Type           EmailType
	RegistrationID string
}

func (f EmailLogFilter) Matches(l *EmailLog) bool {
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.RegistrationID != "" && (l.RegistrationID == nil || *l.RegistrationID != f.RegistrationID) {
		return false
	}
	return true
}
