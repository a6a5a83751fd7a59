package service

import (
	"fmt"

	"lendit/internal/database"
	"lendit/internal/models"
)

// Transition computes the next booking status for an owner decision.
// Re-approving an approved booking is an error; rejection always
// lands in REJECTED, whatever the current status. The caller is
// responsible for verifying the decider owns the item.
func Transition(current models.Status, approve bool) (models.Status, error) {
	if !approve {
		return models.StatusRejected, nil
	}
	if current == models.StatusApproved {
		return current, fmt.Errorf("booking already approved: %w", database.ErrNotAvailable)
	}
	return models.StatusApproved, nil
}
