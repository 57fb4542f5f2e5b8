package models

import (
	"fmt"

	"github.com/dmitrijs2005/carshow/internal/common"
)

// AwardConflictError names the registration already holding an award.
// It matches common.ErrAwardTaken with errors.Is.
type AwardConflictError struct {
	Category  string
	CarNumber int64
	Owner     string
}

func (e *AwardConflictError) Error() string {
	return fmt.Sprintf("award %q is already assigned to car #%d (%s)", e.Category, e.CarNumber, e.Owner)
}

func (e *AwardConflictError) Is(target error) bool {
	return target == common.ErrAwardTaken
}
