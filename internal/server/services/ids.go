package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carshow/internal/common"
)

// validateID rejects ids that cannot exist so the store never sees them.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("id %q: %w", id, common.ErrNotFound)
	}
	return nil
}
