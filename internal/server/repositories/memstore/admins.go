package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type adminRepo Store

func cloneAdmin(a *models.Admin) *models.Admin {
	c := *a
	c.PasswordHash = cloneString(a.PasswordHash)
	c.InviteTokenHash = cloneString(a.InviteTokenHash)
	c.InviteExpiresAt = cloneTime(a.InviteExpiresAt)
	c.AcceptedAt = cloneTime(a.AcceptedAt)
	c.LastLoginAt = cloneTime(a.LastLoginAt)
	return &c
}

func (r *adminRepo) Create(_ context.Context, a *models.Admin) (*models.Admin, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	a.Email = strings.ToLower(a.Email)
	for _, existing := range s.admins {
		if existing.Email == a.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	s.admins[a.ID] = cloneAdmin(a)
	return a, nil
}

func (r *adminRepo) Get(_ context.Context, id string) (*models.Admin, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneAdmin(a), nil
}

func (r *adminRepo) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	for _, a := range s.admins {
		if a.Email == email {
			return cloneAdmin(a), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *adminRepo) list(accepted bool) []*models.Admin {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Admin
	for _, a := range s.admins {
		if !accepted || a.Accepted() {
			result = append(result, cloneAdmin(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (r *adminRepo) List(context.Context) ([]*models.Admin, error) {
	return r.list(false), nil
}

func (r *adminRepo) ListAccepted(context.Context) ([]*models.Admin, error) {
	s := (*Store)(r)
	s.mu.Lock()
	err := s.fail("admins.ListAccepted")
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.list(true), nil
}

func (r *adminRepo) update(id string, fn func(a *models.Admin)) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(a)
	return nil
}

func (r *adminRepo) SetInvite(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	return r.update(id, func(a *models.Admin) {
		a.InviteTokenHash = &tokenHash
		a.InviteExpiresAt = &expiresAt
	})
}

func (r *adminRepo) Accept(_ context.Context, id, passwordHash string, now time.Time) error {
	return r.update(id, func(a *models.Admin) {
		a.PasswordHash = &passwordHash
		a.AcceptedAt = &now
		a.InviteTokenHash = nil
		a.InviteExpiresAt = nil
	})
}

func (r *adminRepo) TouchLogin(_ context.Context, id string, now time.Time) error {
	return r.update(id, func(a *models.Admin) {
		a.LastLoginAt = &now
	})
}
