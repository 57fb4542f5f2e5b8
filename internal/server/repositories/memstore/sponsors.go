package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type sponsorRepo Store

func cloneSponsor(sp *models.Sponsor) *models.Sponsor {
	c := *sp
	c.PaidAt = cloneTime(sp.PaidAt)
	return &c
}

func (r *sponsorRepo) Create(_ context.Context, sp *models.Sponsor) (*models.Sponsor, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("sponsors.Create"); err != nil {
		return nil, err
	}

	now := time.Now()
	sp.ID = uuid.NewString()
	sp.CreatedAt, sp.UpdatedAt = now, now
	s.sponsors[sp.ID] = cloneSponsor(sp)
	return sp, nil
}

func (r *sponsorRepo) Get(_ context.Context, id string) (*models.Sponsor, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sponsors[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneSponsor(sp), nil
}

func (r *sponsorRepo) List(_ context.Context, status models.SponsorStatus) ([]*models.Sponsor, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Sponsor
	for _, sp := range s.sponsors {
		if status == "" || sp.Status == status {
			result = append(result, cloneSponsor(sp))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CompanyName < result[j].CompanyName })
	return result, nil
}

func (r *sponsorRepo) Update(_ context.Context, id string, f models.SponsorFields, paidAt *time.Time, now time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("sponsors.Update"); err != nil {
		return err
	}

	sp, ok := s.sponsors[id]
	if !ok {
		return common.ErrNotFound
	}
	sp.CompanyName, sp.ContactName, sp.Email = f.CompanyName, f.ContactName, f.Email
	sp.Phone, sp.Website, sp.Tier, sp.Notes = f.Phone, f.Website, f.Tier, f.Notes
	sp.Status, sp.AmountPaid = f.Status, f.AmountPaid
	sp.PaidAt = cloneTime(paidAt)
	sp.UpdatedAt = now
	return nil
}

func (r *sponsorRepo) PaidTotals(context.Context) (int, int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		n     int
		total int64
	)
	for _, sp := range s.sponsors {
		if sp.Status == models.SponsorPaid {
			n++
			total += sp.AmountPaid
		}
	}
	return n, total, nil
}
