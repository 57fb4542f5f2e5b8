package registrations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.Registration) (*models.Registration, error)
	Get(ctx context.Context, id string) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]*models.Registration, error)
	CountPaid(ctx context.Context) (int, error)
	PaidTotals(ctx context.Context) (count int, amount int64, err error)
	FindByAward(ctx context.Context, category, excludeID string) (*models.Registration, error)

	SetCheckoutSession(ctx context.Context, id, sessionID string, now time.Time) error
	// MarkPaid moves the row to paid and returns the status it had before.
	MarkPaid(ctx context.Context, id, paymentIntentID string, amount int64, now time.Time) (models.PaymentStatus, error)
	Update(ctx context.Context, id string, f models.RegistrationFields, paidAt *time.Time, now time.Time) error
	SetCheckedIn(ctx context.Context, id string, checkedIn bool, at *time.Time, now time.Time) error
	SetImageURL(ctx context.Context, id, url string, now time.Time) error
}
