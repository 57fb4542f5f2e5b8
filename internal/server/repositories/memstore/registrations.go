package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type registrationRepo Store

func cloneRegistration(r *models.Registration) *models.Registration {
	c := *r
	c.PaidAt = cloneTime(r.PaidAt)
	c.AwardCategory = cloneString(r.AwardCategory)
	c.CheckedInAt = cloneTime(r.CheckedInAt)
	c.StripeSessionID = cloneString(r.StripeSessionID)
	c.StripePaymentIntentID = cloneString(r.StripePaymentIntentID)
	c.AIImageURL = cloneString(r.AIImageURL)
	return &c
}

func (r *registrationRepo) Create(_ context.Context, reg *models.Registration) (*models.Registration, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("registrations.Create"); err != nil {
		return nil, err
	}

	s.nextCarNumber++
	now := time.Now()
	reg.ID = uuid.NewString()
	reg.CarNumber = s.nextCarNumber
	reg.CreatedAt, reg.UpdatedAt = now, now
	s.registrations[reg.ID] = cloneRegistration(reg)
	return reg, nil
}

func (r *registrationRepo) Get(_ context.Context, id string) (*models.Registration, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("registrations.Get"); err != nil {
		return nil, err
	}

	reg, ok := s.registrations[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneRegistration(reg), nil
}

func (r *registrationRepo) List(_ context.Context, filter models.RegistrationFilter) ([]*models.Registration, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Registration
	for _, reg := range s.registrations {
		if filter.Matches(reg) {
			result = append(result, cloneRegistration(reg))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CarNumber < result[j].CarNumber })
	return result, nil
}

func (r *registrationRepo) CountPaid(ctx context.Context) (int, error) {
	n, _, err := r.PaidTotals(ctx)
	return n, err
}

func (r *registrationRepo) PaidTotals(context.Context) (int, int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("registrations.CountPaid"); err != nil {
		return 0, 0, err
	}

	var (
		n     int
		total int64
	)
	for _, reg := range s.registrations {
		if reg.PaymentStatus == models.PaymentPaid {
			n++
			total += reg.AmountPaid
		}
	}
	return n, total, nil
}

func (r *registrationRepo) FindByAward(_ context.Context, category, excludeID string) (*models.Registration, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *models.Registration
	for id, reg := range s.registrations {
		if id == excludeID || reg.AwardCategory == nil || *reg.AwardCategory != category {
			continue
		}
		if found == nil || reg.CarNumber < found.CarNumber {
			found = reg
		}
	}
	if found == nil {
		return nil, common.ErrNotFound
	}
	return cloneRegistration(found), nil
}

func (r *registrationRepo) update(op, id string, fn func(reg *models.Registration)) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return err
	}

	reg, ok := s.registrations[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(reg)
	return nil
}

func (r *registrationRepo) SetCheckoutSession(_ context.Context, id, sessionID string, now time.Time) error {
	return r.update("registrations.SetCheckoutSession", id, func(reg *models.Registration) {
		reg.StripeSessionID = &sessionID
		reg.UpdatedAt = now
	})
}

func (r *registrationRepo) MarkPaid(_ context.Context, id, paymentIntentID string, amount int64, now time.Time) (models.PaymentStatus, error) {
	var prev models.PaymentStatus
	err := r.update("registrations.MarkPaid", id, func(reg *models.Registration) {
		prev = reg.PaymentStatus
		if prev != models.PaymentPaid {
			reg.PaidAt = cloneTime(&now)
		}
		reg.PaymentStatus = models.PaymentPaid
		reg.StripePaymentIntentID = &paymentIntentID
		reg.AmountPaid = amount
		reg.UpdatedAt = now
	})
	return prev, err
}

func (r *registrationRepo) Update(_ context.Context, id string, f models.RegistrationFields, paidAt *time.Time, now time.Time) error {
	return r.update("registrations.Update", id, func(reg *models.Registration) {
		reg.FirstName, reg.LastName, reg.Email = f.FirstName, f.LastName, f.Email
		reg.Phone, reg.Hometown = f.Phone, f.Hometown
		reg.VehicleYear, reg.VehicleMake, reg.VehicleModel = f.VehicleYear, f.VehicleMake, f.VehicleModel
		reg.VehicleColor, reg.EngineSpecs = f.VehicleColor, f.EngineSpecs
		reg.Modifications, reg.Story = f.Modifications, f.Story
		reg.PaymentStatus, reg.AmountPaid = f.PaymentStatus, f.AmountPaid
		reg.PaidAt = cloneTime(paidAt)
		reg.AwardCategory = f.Award()
		reg.UpdatedAt = now
	})
}

func (r *registrationRepo) SetCheckedIn(_ context.Context, id string, checkedIn bool, at *time.Time, now time.Time) error {
	return r.update("registrations.SetCheckedIn", id, func(reg *models.Registration) {
		reg.CheckedIn = checkedIn
		reg.CheckedInAt = cloneTime(at)
		reg.UpdatedAt = now
	})
}

func (r *registrationRepo) SetImageURL(_ context.Context, id, url string, now time.Time) error {
	return r.update("registrations.SetImageURL", id, func(reg *models.Registration) {
		reg.AIImageURL = &url
		reg.UpdatedAt = now
	})
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
