// Package audit computes field-level differences between two snapshots of
// an editable record.
package audit

import "github.com/dmitrijs2005/carshow/internal/server/models"

// Diff returns the fields whose values differ between before and after.
// A key present on only one side is reported with nil for the missing value.
// The result is empty, never nil, when nothing changed.
func Diff(before, after models.Snapshot) models.Changes {
	changes := models.Changes{}
	for k, newV := range after {
		oldV, ok := before[k]
		if !ok || oldV != newV {
			changes[k] = models.FieldChange{Old: oldV, New: newV}
		}
	}
	for k, oldV := range before {
		if _, ok := after[k]; !ok {
			changes[k] = models.FieldChange{Old: oldV, New: nil}
		}
	}
	return changes
}
