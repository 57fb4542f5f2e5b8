// Package httpapi exposes the public registration endpoints, the Stripe
// webhook and the admin JSON API over gin.
package httpapi

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/services"
	"github.com/dmitrijs2005/carshow/internal/server/tasks"
)

const shutdownTimeout = 10 * time.Second

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Services is everything the handlers call into.
type Services struct {
	Checkout      *services.CheckoutService
	Fulfillment   *services.FulfillmentService
	Registrations *services.RegistrationService
	Sponsors      *services.SponsorService
	Admins        *services.AdminService
	Announcements *services.AnnouncementService
	Images        *services.ImageService
	Campaigns     *services.CampaignService
	Reports       *services.ReportService
	Tasks         *tasks.Dispatcher
}

type Server struct {
	address       string
	router        *gin.Engine
	checkout      *services.CheckoutService
	fulfillment   *services.FulfillmentService
	registrations *services.RegistrationService
	sponsors      *services.SponsorService
	admins        *services.AdminService
	announcements *services.AnnouncementService
	images        *services.ImageService
	campaigns     *services.CampaignService
	reports       *services.ReportService
	tasks         *tasks.Dispatcher
	eventName     string
	logger        logging.Logger
}

func NewServer(address, eventName string, svc Services, l logging.Logger) *Server {
	s := &Server{
		address:       address,
		checkout:      svc.Checkout,
		fulfillment:   svc.Fulfillment,
		registrations: svc.Registrations,
		sponsors:      svc.Sponsors,
		admins:        svc.Admins,
		announcements: svc.Announcements,
		images:        svc.Images,
		campaigns:     svc.Campaigns,
		reports:       svc.Reports,
		tasks:         svc.Tasks,
		eventName:     eventName,
		logger:        l.With("module", "http_server"),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.SetHTMLTemplate(pages)
	s.registerRoutes(router)
	s.router = router
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/invite/:code", s.showInvite)
	r.POST("/invite/:code", s.submitInvite)

	api := r.Group("/api")
	api.POST("/checkout", s.createCheckout)
	api.POST("/webhooks/stripe", s.stripeWebhook)
	api.GET("/capacity", s.capacity)
	api.POST("/sponsors/inquiry", s.sponsorInquiry)
	api.POST("/invites/accept", s.acceptInvite)
	api.POST("/admin/login", s.login)

	admin := api.Group("", s.requireAdmin())
	admin.POST("/images", s.generateImage)

	adm := admin.Group("/admin")
	adm.POST("/invites", s.requireRole(models.RoleAdmin), s.invite)
	adm.GET("/admins", s.listAdmins)

	adm.GET("/registrations", s.listRegistrations)
	adm.POST("/registrations", s.createRegistration)
	adm.GET("/registrations/:id", s.getRegistration)
	adm.PUT("/registrations/:id", s.updateRegistration)
	adm.POST("/registrations/:id/check-in", s.checkIn)
	adm.POST("/registrations/:id/resend-confirmation", s.resendConfirmation)

	adm.GET("/payments", s.paymentDetails)
	adm.POST("/announcements", s.sendAnnouncement)

	adm.GET("/sponsors", s.listSponsors)
	adm.POST("/sponsors", s.createSponsor)
	adm.GET("/sponsors/:id", s.getSponsor)
	adm.PUT("/sponsors/:id", s.updateSponsor)

	adm.GET("/campaigns", s.listCampaigns)
	adm.POST("/campaigns", s.createCampaign)
	adm.GET("/reports/summary", s.reportSummary)
	adm.POST("/reports/sheets-export", s.exportSheets)
	adm.GET("/email-logs", s.emailLogs)
	adm.GET("/tasks", s.recentTasks)
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
