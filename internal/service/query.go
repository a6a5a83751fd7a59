package service

import (
	"fmt"
	"strings"

	"lendit/internal/database"
	"lendit/internal/models"
)

// ParseBucket maps a state-filter token onto its bucket. Matching is
// case-insensitive and an empty token means ALL. Unknown tokens fail
// before any retrieval is attempted.
func ParseBucket(state string) (models.Bucket, error) {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "", "ALL":
		return models.BucketAll, nil
	case "CURRENT":
		return models.BucketCurrent, nil
	case "PAST":
		return models.BucketPast, nil
	case "FUTURE":
		return models.BucketFuture, nil
	case "WAITING":
		return models.BucketWaiting, nil
	case "REJECTED":
		return models.BucketRejected, nil
	default:
		return 0, fmt.Errorf("%w: %s", database.ErrUnknownState, state)
	}
}

func validatePage(from, size int) error {
	if from < 0 || size < 1 {
		return fmt.Errorf("from=%d size=%d: %w", from, size, database.ErrInvalidPagination)
	}
	return nil
}
