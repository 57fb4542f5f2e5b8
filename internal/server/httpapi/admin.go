package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
	"github.com/dmitrijs2005/carshow/internal/server/services"
)

type inviteRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email" binding:"required"`
	Role       models.Role `json:"role"`
	ResendOnly bool        `json:"resendOnly"`
}

func (s *Server) invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	if req.ResendOnly {
		a, err := s.admins.ResendInvite(c.Request.Context(), req.Email)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toAdmin(a))
		return
	}

	cmd, err := models.NewInviteAdminCommand(req.Name, req.Email, req.Role)
	if err != nil {
		s.writeError(c, err)
		return
	}
	a, err := s.admins.Invite(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAdmin(a))
}

func (s *Server) listAdmins(c *gin.Context) {
	admins, err := s.admins.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": mapSlice(admins, toAdmin)})
}

func (s *Server) listRegistrations(c *gin.Context) {
	filter := models.RegistrationFilter{Status: models.PaymentStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		s.writeError(c, fmt.Errorf("%w: unknown status %q", common.ErrValidation, filter.Status))
		return
	}
	if v := c.Query("include_archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(c, fmt.Errorf("%w: include_archived must be a boolean", common.ErrValidation))
			return
		}
		filter.IncludeArchived = b
	}

	regs, err := s.registrations.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": mapSlice(regs, toRegistration)})
}

func (s *Server) getRegistration(c *gin.Context) {
	d, err := s.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"registration": toRegistration(d.Registration),
		"audit":        toAudit(d.Audit),
		"emails":       toEmailLogs(d.Emails),
	})
}

func (s *Server) createRegistration(c *gin.Context) {
	var f models.RegistrationFields
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := models.NewCreateRegistrationCommand(f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	reg, err := s.registrations.Create(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRegistration(reg))
}

func (s *Server) updateRegistration(c *gin.Context) {
	var f models.RegistrationFields
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := models.NewUpdateRegistrationCommand(c.Param("id"), f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	reg, err := s.registrations.Update(c.Request.Context(), cmd, actorID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRegistration(reg))
}

type checkInRequest struct {
	CheckedIn *bool `json:"checked_in" binding:"required"`
}

func (s *Server) checkIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	reg, err := s.registrations.SetCheckedIn(c.Request.Context(), c.Param("id"), *req.CheckedIn, actorID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRegistration(reg))
}

func (s *Server) resendConfirmation(c *gin.Context) {
	if err := s.registrations.ResendConfirmation(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

type imageRequest struct {
	RegistrationID string `json:"registrationId" binding:"required"`
}

func (s *Server) generateImage(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	url, err := s.images.Generate(c.Request.Context(), req.RegistrationID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

func (s *Server) paymentDetails(c *gin.Context) {
	q := payments.LookupQuery{
		PaymentIntentID: c.Query("payment_intent_id"),
		SessionID:       c.Query("session_id"),
	}
	if q.PaymentIntentID == "" && q.SessionID == "" {
		s.writeError(c, fmt.Errorf("%w: payment_intent_id or session_id is required", common.ErrValidation))
		return
	}

	d, err := s.checkout.PaymentDetails(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type announcementRequest struct {
	Subject      string   `json:"subject"`
	Body         string   `json:"body"`
	RecipientIDs []string `json:"recipientIds"`
}

func (s *Server) sendAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := services.NewAnnouncementCommand(req.Subject, req.Body, req.RecipientIDs)
	if err != nil {
		s.writeError(c, err)
		return
	}
	res, err := s.announcements.Send(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listSponsors(c *gin.Context) {
	status := models.SponsorStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		s.writeError(c, fmt.Errorf("%w: unknown status %q", common.ErrValidation, status))
		return
	}

	sps, err := s.sponsors.List(c.Request.Context(), status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sponsors": mapSlice(sps, toSponsor)})
}

func (s *Server) getSponsor(c *gin.Context) {
	d, err := s.sponsors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sponsor": toSponsor(d.Sponsor), "audit": toAudit(d.Audit)})
}

func (s *Server) createSponsor(c *gin.Context) {
	var f models.SponsorFields
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := models.NewCreateSponsorCommand(f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	sp, err := s.sponsors.Create(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSponsor(sp))
}

func (s *Server) updateSponsor(c *gin.Context) {
	var f models.SponsorFields
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := models.NewUpdateSponsorCommand(c.Param("id"), f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	sp, err := s.sponsors.Update(c.Request.Context(), cmd, actorID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSponsor(sp))
}

type campaignRequest struct {
	Name       string `json:"name"`
	Platform   string `json:"platform"`
	SpendCents int64  `json:"spendCents"`
	StartedOn  string `json:"startedOn"`
	EndedOn    string `json:"endedOn"`
	Notes      string `json:"notes"`
}

func (s *Server) createCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := models.NewCreateCampaignCommand(req.Name, req.Platform, req.SpendCents, req.StartedOn, req.EndedOn, req.Notes)
	if err != nil {
		s.writeError(c, err)
		return
	}
	cp, err := s.campaigns.Create(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCampaign(cp))
}

func (s *Server) listCampaigns(c *gin.Context) {
	cps, err := s.campaigns.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": mapSlice(cps, toCampaign)})
}

func (s *Server) reportSummary(c *gin.Context) {
	sum, err := s.reports.Summary(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) exportSheets(c *gin.Context) {
	res, err := s.reports.ExportToSheets(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) emailLogs(c *gin.Context) {
	logs, err := s.reports.EmailLogs(c.Request.Context(), models.EmailLogFilter{
		Type:           models.EmailType(c.Query("type")),
		RegistrationID: c.Query("registration_id"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": toEmailLogs(logs)})
}

func (s *Server) recentTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": s.tasks.Recent()})
}
