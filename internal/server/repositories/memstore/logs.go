package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type auditRepo Store

func (r *auditRepo) Append(_ context.Context, entity models.AuditEntity, e *models.AuditLogEntry) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("audit.Append"); err != nil {
		return err
	}

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	c := *e
	c.ActorID = cloneString(e.ActorID)
	s.audit[entity] = append(s.audit[entity], &c)
	return nil
}

// List returns entries newest first.
func (r *auditRepo) List(_ context.Context, entity models.AuditEntity, entityID string) ([]*models.AuditLogEntry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.AuditLogEntry
	entries := s.audit[entity]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].EntityID == entityID {
			c := *entries[i]
			result = append(result, &c)
		}
	}
	return result, nil
}

type emailRepo Store

func (r *emailRepo) Append(_ context.Context, l *models.EmailLog) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("emaillog.Append"); err != nil {
		return err
	}

	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	c := *l
	s.emails = append(s.emails, &c)
	return nil
}

func (r *emailRepo) List(_ context.Context, filter models.EmailLogFilter) ([]*models.EmailLog, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.EmailLog
	for i := len(s.emails) - 1; i >= 0; i-- {
		if filter.Matches(s.emails[i]) {
			c := *s.emails[i]
			result = append(result, &c)
		}
	}
	return result, nil
}

type campaignRepo Store

func (r *campaignRepo) Create(_ context.Context, c *models.AdCampaign) (*models.AdCampaign, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	cp := *c
	s.campaigns = append(s.campaigns, &cp)
	return c, nil
}

func (r *campaignRepo) List(context.Context) ([]*models.AdCampaign, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.AdCampaign, 0, len(s.campaigns))
	for i := len(s.campaigns) - 1; i >= 0; i-- {
		c := *s.campaigns[i]
		result = append(result, &c)
	}
	return result, nil
}

func (r *campaignRepo) TotalSpend(context.Context) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, c := range s.campaigns {
		total += c.SpendCents
	}
	return total, nil
}
