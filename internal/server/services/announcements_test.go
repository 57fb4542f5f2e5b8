package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

func TestAnnouncementSend_CountsFailuresAndContinues(t *testing.T) {
	e := newTestEnv(t)
	s := NewAnnouncementService(e.db, e.store, e.mailer, e.composer, logging.Nop{})

	ok := e.seedRegistration(t, func(r *models.Registration) { r.Email = "ok@example.com" })
	bounced := e.seedRegistration(t, func(r *models.Registration) { r.Email = "bounce@example.com" })
	e.sender.fail["bounce@example.com"] = errPermanent
	missing := "0b6f1f7e-1111-4a4a-8b8b-000000000000"

	cmd, err := NewAnnouncementCommand("Gates open at 8", "Bring your ticket.\n\nSee you there!",
		[]string{bounced.ID, ok.ID, missing})
	require.NoError(t, err)

	res, err := s.Send(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, AnnouncementResult{Sent: 1, Failed: 2}, res)

	logs := e.emails(t, models.EmailAnnouncement)
	require.Len(t, logs, 1)
	assert.Equal(t, "ok@example.com", logs[0].Recipient)
	assert.Equal(t, "Gates open at 8", logs[0].Subject)
	require.NotNil(t, logs[0].RegistrationID)
	assert.Equal(t, ok.ID, *logs[0].RegistrationID)
}

func TestNewAnnouncementCommand(t *testing.T) {
	cmd, err := NewAnnouncementCommand(" Hi ", " body ", []string{"a", " a", "", "b"})
	require.NoError(t, err)
	assert.Equal(t, AnnouncementCommand{Subject: "Hi", Body: "body", RecipientIDs: []string{"a", "b"}}, cmd)

	for name, args := range map[string][3]any{
		"no subject":    {"", "body", []string{"a"}},
		"no body":       {"Hi", "  ", []string{"a"}},
		"no recipients": {"Hi", "body", []string{" "}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewAnnouncementCommand(args[0].(string), args[1].(string), args[2].([]string))
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}
