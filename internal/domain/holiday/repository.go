package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// GetActiveBetween returns active holidays in [from, to], ordered by date then creation.
	GetActiveBetween(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error)
}
