package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/auth"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

func (s *Server) createCheckout(c *gin.Context) {
	var f models.RegistrationFields
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := models.NewCheckoutCommand(f)
	if err != nil {
		s.writeError(c, err)
		return
	}

	url, err := s.checkout.CreateCheckout(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// stripeWebhook needs the exact bytes Stripe signed, so the body is read
// raw rather than bound.
func (s *Server) stripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		s.badRequest(c, err)
		return
	}

	err = s.fulfillment.HandlePaymentCompleted(c.Request.Context(), payload, c.GetHeader(common.StripeSignatureHeader))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (s *Server) capacity(c *gin.Context) {
	cp, err := s.checkout.Capacity(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (s *Server) sponsorInquiry(c *gin.Context) {
	var f models.SponsorFields
	if err := c.ShouldBindJSON(&f); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := models.NewSponsorInquiryCommand(f)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sp, err := s.sponsors.Inquire(c.Request.Context(), cmd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sp.ID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	token, err := s.admins.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type acceptInviteRequest struct {
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) acceptInvite(c *gin.Context) {
	var req acceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	a, err := s.admins.AcceptInvite(c.Request.Context(), req.Code, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdmin(a))
}

type invitePage struct {
	EventName string
	Code      string
	Name      string
	Email     string
	Role      string
	Error     string
	Problem   string
	Accepted  bool
}

// showInvite only displays the form. Mail scanners follow links, so the
// token is redeemed by the explicit POST, never by this GET.
func (s *Server) showInvite(c *gin.Context) {
	code := c.Param("code")
	a, err := s.admins.CheckInvite(c.Request.Context(), code)
	if err != nil {
		s.renderInviteProblem(c, err)
		return
	}
	c.HTML(http.StatusOK, "invite.html", invitePage{
		EventName: s.eventName,
		Code:      code,
		Name:      a.Name,
		Email:     a.Email,
		Role:      string(a.Role),
	})
}

func (s *Server) submitInvite(c *gin.Context) {
	code := c.Param("code")
	a, err := s.admins.CheckInvite(c.Request.Context(), code)
	if err != nil {
		s.renderInviteProblem(c, err)
		return
	}

	page := invitePage{EventName: s.eventName, Code: code, Name: a.Name, Email: a.Email, Role: string(a.Role)}

	password := c.PostForm("password")
	if password != c.PostForm("confirm") {
		page.Error = "The passwords do not match."
		c.HTML(http.StatusBadRequest, "invite.html", page)
		return
	}

	if _, err := s.admins.AcceptInvite(c.Request.Context(), code, password); err != nil {
		if errors.Is(err, common.ErrValidation) {
			page.Error = fmt.Sprintf("Passwords need at least %d characters.", auth.MinPasswordLength)
			c.HTML(http.StatusBadRequest, "invite.html", page)
			return
		}
		s.renderInviteProblem(c, err)
		return
	}

	page.Accepted = true
	c.HTML(http.StatusOK, "invite.html", page)
}

func (s *Server) renderInviteProblem(c *gin.Context, err error) {
	page := invitePage{EventName: s.eventName}
	switch {
	case errors.Is(err, common.ErrAlreadyAccepted):
		page.Problem = "This invitation has already been accepted."
	case errors.Is(err, common.ErrInviteExpired):
		page.Problem = "This invitation has expired."
	case errors.Is(err, common.ErrInvalidToken):
		page.Problem = "This invitation link is not valid."
	default:
		s.logger.Error(c.Request.Context(), "invite page", "error", err)
		page.Problem = "Something went wrong. Please try again later."
	}
	c.HTML(statusFor(err), "invite.html", page)
}
