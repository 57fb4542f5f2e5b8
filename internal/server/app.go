// Package server wires the car show back office together: configuration,
// the PostgreSQL store, external integrations, services, the HTTP API and
// the gRPC health listener, plus graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/config"
	"github.com/dmitrijs2005/carshow/internal/server/httpapi"
	"github.com/dmitrijs2005/carshow/internal/server/imagegen"
	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/objectstore"
	"github.com/dmitrijs2005/carshow/internal/server/opschat"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
	"github.com/dmitrijs2005/carshow/internal/server/payments/stripegw"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/carshow/internal/server/services"
	"github.com/dmitrijs2005/carshow/internal/server/sheets"
	"github.com/dmitrijs2005/carshow/internal/server/tasks"

	gs "github.com/dmitrijs2005/carshow/internal/server/grpc"
)

// taskDrainTimeout bounds how long shutdown waits for in-flight side effects.
const taskDrainTimeout = 30 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *tasks.Dispatcher
	api        *httpapi.Server
	health     *gs.HealthServer
}

// OpenDB opens the pool and checks that the database answers.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(repomanager.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	um := repomanager.NewPostgresRepositoryManager()
	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := um.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	objects, err := newObjectStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, err
	}
	exporter, err := newExporter(ctx, c)
	if err != nil {
		db.Close()
		return nil, err
	}
	ops, err := newOpsChat(c)
	if err != nil {
		db.Close()
		return nil, err
	}

	gateway := newGateway(c)
	mailer := mail.NewReliable(newSender(c), um.EmailLog(db), c.EmailRetryBaseDelay, logger)
	composer := mail.Composer{EventName: c.EventName, Currency: c.Currency, PublicBaseURL: c.PublicBaseURL}
	dispatcher := tasks.NewDispatcher(tasks.DefaultHistory, logger)

	notifier := services.NewNotifier(db, um, mailer, composer, ops, logger)
	images := services.NewImageService(db, um, newGenerator(c), objects, logger)

	api := httpapi.NewServer(c.HTTPAddr, c.EventName, httpapi.Services{
		Checkout:      services.NewCheckoutService(db, um, gateway, c, logger),
		Fulfillment:   services.NewFulfillmentService(db, um, gateway, dispatcher, notifier, images, logger),
		Registrations: services.NewRegistrationService(db, um, notifier, logger),
		Sponsors:      services.NewSponsorService(db, um, notifier, dispatcher, logger),
		Admins:        services.NewAdminService(db, um, mailer, composer, c, logger),
		Announcements: services.NewAnnouncementService(db, um, mailer, composer, logger),
		Images:        images,
		Campaigns:     services.NewCampaignService(db, um),
		Reports:       services.NewReportService(db, um, exporter, c, logger),
		Tasks:         dispatcher,
	}, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		dispatcher: dispatcher,
		api:        api,
		health:     gs.NewHealthServer(c.HealthAddr, logger),
	}, nil
}

func newGateway(c *config.Config) payments.Gateway {
	if c.StripeSecretKey == "" {
		return payments.DisabledGateway{}
	}
	return stripegw.New(c.StripeSecretKey, c.StripeWebhookSecret)
}

func newSender(c *config.Config) mail.Sender {
	if c.ResendAPIKey == "" {
		return mail.DisabledSender{}
	}
	return mail.NewResendSender(c.ResendAPIKey, c.EmailFrom)
}

func newGenerator(c *config.Config) imagegen.Generator {
	if c.OpenAIAPIKey == "" {
		return imagegen.DisabledGenerator{}
	}
	return imagegen.NewOpenAIGenerator(c.OpenAIAPIKey, c.ImageModel)
}

func newObjectStore(ctx context.Context, c *config.Config) (objectstore.Store, error) {
	s, err := objectstore.NewS3Store(ctx, objectstore.Config{
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Region:        c.S3Region,
		Endpoint:      c.S3BaseEndpoint,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}
	return s, nil
}

func newExporter(ctx context.Context, c *config.Config) (sheets.Exporter, error) {
	if c.GoogleServiceAccountJSON == "" || c.SpreadsheetID == "" {
		return sheets.Disabled{}, nil
	}
	e, err := sheets.New(ctx, c.GoogleServiceAccountJSON, c.SpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("sheets init error: %w", err)
	}
	return e, nil
}

func newOpsChat(c *config.Config) (opschat.Notifier, error) {
	if c.TelegramBotToken == "" || c.TelegramChatID == 0 {
		return opschat.Nop{}, nil
	}
	t, err := opschat.NewTelegram(c.TelegramBotToken, c.TelegramChatID)
	if err != nil {
		return nil, fmt.Errorf("telegram init error: %w", err)
	}
	return t, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves until a signal arrives or a listener fails, then waits for the
// listeners to stop and for dispatched tasks to drain before closing the pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "http", app.api.Run)
	}()
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "grpc_health", app.health.Run)
	}()

	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), taskDrainTimeout)
	defer cancel()
	if err := app.dispatcher.Wait(drainCtx); err != nil {
		app.logger.Warn(drainCtx, "tasks still running at shutdown", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(drainCtx, "db close error", "error", err)
	}
	app.logger.Info(drainCtx, "App stopped")
}
