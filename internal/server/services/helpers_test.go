package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/config"
	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/models"
	"github.com/dmitrijs2005/carshow/internal/server/payments"
	"github.com/dmitrijs2005/carshow/internal/server/payments/stripegw"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/memstore"
	"github.com/dmitrijs2005/carshow/internal/server/tasks"
)

const testWebhookSecret = "whsec_services_test"

var errPermanent = errors.New("resend: 422 invalid recipient")

// --- fakes ---

// fakeGateway verifies webhooks with the real Stripe signature check and
// fakes the API calls.
type fakeGateway struct {
	*stripegw.Gateway

	mu        sync.Mutex
	requests  []payments.CheckoutRequest
	session   *payments.CheckoutSession
	createErr error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.session, nil
}

func (g *fakeGateway) PaymentDetails(_ context.Context, q payments.LookupQuery) (*payments.PaymentDetails, error) {
	if q.PaymentIntentID == "" {
		return nil, common.ErrNotFound
	}
	return &payments.PaymentDetails{PaymentIntentID: q.PaymentIntentID, Status: "succeeded"}, nil
}

// scriptedSender fails for the recipients listed in fail and succeeds
// otherwise, numbering message ids re_1, re_2, ...
type scriptedSender struct {
	mu   sync.Mutex
	fail map[string]error
	sent []mail.Message
}

func (s *scriptedSender) Send(_ context.Context, msg mail.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[msg.To]; err != nil {
		return "", err
	}
	s.sent = append(s.sent, msg)
	return fmt.Sprintf("re_%d", len(s.sent)), nil
}

func (s *scriptedSender) messages() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message(nil), s.sent...)
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	return []byte("\x89PNG"), nil
}

type fakeObjects struct {
	mu   sync.Mutex
	keys []string
}

func (o *fakeObjects) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.keys = append(o.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeOps struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeOps) Notify(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

type fakeExporter struct {
	tabs map[string][][]any
	err  error
}

func (e *fakeExporter) ReplaceSheet(_ context.Context, sheet string, rows [][]any) error {
	if e.err != nil {
		return e.err
	}
	if e.tabs == nil {
		e.tabs = map[string][][]any{}
	}
	e.tabs[sheet] = rows
	return nil
}

func (e *fakeExporter) SpreadsheetID() string { return "sheet-1" }

// --- environment ---

type testEnv struct {
	db         *sql.DB
	mock       sqlmock.Sqlmock
	store      *memstore.Store
	cfg        *config.Config
	gateway    *fakeGateway
	sender     *scriptedSender
	generator  *fakeGenerator
	objects    *fakeObjects
	ops        *fakeOps
	dispatcher *tasks.Dispatcher
	composer   mail.Composer
	mailer     *mail.Reliable
	notifier   *Notifier
	images     *ImageService
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PublicBaseURL = "https://show.test"
	cfg.MaxRegistrations = 3
	cfg.RegistrationPriceCents = 5000
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, mock := newMockDB(t)
	store := memstore.New()
	cfg := testConfig()

	e := &testEnv{
		db:         db,
		mock:       mock,
		store:      store,
		cfg:        cfg,
		gateway:    &fakeGateway{Gateway: stripegw.New("sk_test_x", testWebhookSecret)},
		sender:     &scriptedSender{fail: map[string]error{}},
		generator:  &fakeGenerator{},
		objects:    &fakeObjects{},
		ops:        &fakeOps{},
		dispatcher: tasks.NewDispatcher(50, logging.Nop{}),
		composer:   mail.Composer{EventName: cfg.EventName, Currency: cfg.Currency, PublicBaseURL: cfg.PublicBaseURL},
	}
	e.mailer = mail.NewReliable(e.sender, store.EmailLog(db), time.Millisecond, logging.Nop{})
	e.notifier = NewNotifier(db, store, e.mailer, e.composer, e.ops, logging.Nop{})
	e.images = NewImageService(db, store, e.generator, e.objects, logging.Nop{})
	return e
}

// expectTx scripts one transaction on the mock connection. memstore ignores
// the *sql.Tx it is handed, so only BEGIN and its ending are visible.
func (e *testEnv) expectTx(commit bool) {
	e.mock.ExpectBegin()
	if commit {
		e.mock.ExpectCommit()
		return
	}
	e.mock.ExpectRollback()
}

func (e *testEnv) waitTasks(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.dispatcher.Wait(ctx))
}

func (e *testEnv) seedRegistration(t *testing.T, mutate func(r *models.Registration)) *models.Registration {
	t.Helper()
	r := &models.Registration{
		FirstName:     "Ann",
		LastName:      "Lee",
		Email:         "ann@example.com",
		VehicleYear:   1967,
		VehicleMake:   "Ford",
		VehicleModel:  "Mustang",
		PaymentStatus: models.PaymentPending,
	}
	if mutate != nil {
		mutate(r)
	}
	r, err := e.store.Registrations(e.db).Create(context.Background(), r)
	require.NoError(t, err)
	return r
}

func (e *testEnv) seedPaid(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e.seedRegistration(t, func(r *models.Registration) {
			paidAt := time.Now()
			r.Email = fmt.Sprintf("paid%d@example.com", i)
			r.PaymentStatus = models.PaymentPaid
			r.AmountPaid = 5000
			r.PaidAt = &paidAt
		})
	}
}

func (e *testEnv) seedAdmin(t *testing.T, email string, accepted bool) *models.Admin {
	t.Helper()
	a := &models.Admin{Name: "Admin " + email, Email: email, Role: models.RoleAdmin}
	if accepted {
		now := time.Now()
		hash := "$2a$10$notarealhashnotarealhashnotarealhashnotarealhashnot"
		a.AcceptedAt, a.PasswordHash = &now, &hash
	}
	a, err := e.store.Admins(e.db).Create(context.Background(), a)
	require.NoError(t, err)
	return a
}

func (e *testEnv) registration(t *testing.T, id string) *models.Registration {
	t.Helper()
	r, err := e.store.Registrations(e.db).Get(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (e *testEnv) emails(t *testing.T, typ models.EmailType) []*models.EmailLog {
	t.Helper()
	logs, err := e.store.EmailLog(e.db).List(context.Background(), models.EmailLogFilter{Type: typ})
	require.NoError(t, err)
	return logs
}

func (e *testEnv) audit(t *testing.T, entity models.AuditEntity, id string) []*models.AuditLogEntry {
	t.Helper()
	entries, err := e.store.AuditLog(e.db).List(context.Background(), entity, id)
	require.NoError(t, err)
	return entries
}

// signedEvent returns a Stripe event body and its signature header.
func signedEvent(t *testing.T, eventType string, metadata map[string]string, paymentIntent string, amount int64) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":          "evt_" + paymentIntent,
		"object":      "event",
		"api_version": "2024-06-20",
		"type":        eventType,
		"data": map[string]any{"object": map[string]any{
			"id":             "cs_" + paymentIntent,
			"object":         "checkout.session",
			"amount_total":   amount,
			"payment_intent": paymentIntent,
			"metadata":       metadata,
		}},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   body,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

var inviteLinkRe = regexp.MustCompile(`/invite/([A-Za-z0-9_-]+)`)

// inviteCode pulls the code out of the last invite mailed to email.
func (e *testEnv) inviteCode(t *testing.T, email string) string {
	t.Helper()
	msgs := e.sender.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].To == email && msgs[i].Type == models.EmailInvite {
			m := inviteLinkRe.FindStringSubmatch(msgs[i].HTML)
			require.Len(t, m, 2, "invite link not found")
			return m[1]
		}
	}
	t.Fatalf("no invite sent to %s", email)
	return ""
}
