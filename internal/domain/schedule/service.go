package schedule

import (
	"context"
	"time"
)

type CalendarService interface {
	// Calendar preloads schedule, overrides and holidays for [from, to].
	Calendar(ctx context.Context, companyID, employeeID string, from, to time.Time) (DayResolver, error)
	Resolve(ctx context.Context, companyID, employeeID string, date time.Time, isDayOff bool) (Resolution, error)
}
