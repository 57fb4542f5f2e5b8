package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server/imagegen"
	"github.com/dmitrijs2005/carshow/internal/server/objectstore"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
)

type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   imagegen.Generator
	store       objectstore.Store
	logger      logging.Logger
	now         func() time.Time
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, g imagegen.Generator, store objectstore.Store, logger logging.Logger) *ImageService {
	return &ImageService{
		db:          db,
		repomanager: m,
		generator:   g,
		store:       store,
		logger:      logger.With("module", "images"),
		now:         time.Now,
	}
}

// Generate renders an image of the registered vehicle, stores it and writes
// its URL onto the registration.
func (s *ImageService) Generate(ctx context.Context, registrationID string) (string, error) {
	if err := validateID(registrationID); err != nil {
		return "", err
	}
	repo := s.repomanager.Registrations(s.db)

	reg, err := repo.Get(ctx, registrationID)
	if err != nil {
		return "", err
	}

	img, err := s.generator.Generate(ctx, imagegen.Prompt(reg))
	if err != nil {
		return "", err
	}

	now := s.now()
	url, err := s.store.Put(ctx, objectstore.ImageKey(reg.ID, now), "image/png", img)
	if err != nil {
		return "", err
	}

	if err := repo.SetImageURL(ctx, reg.ID, url, now); err != nil {
		return "", fmt.Errorf("save image url: %w", err)
	}

	s.logger.Info(ctx, "vehicle image generated", "registration_id", reg.ID, "bytes", len(img))
	return url, nil
}
