package schedule

import (
	"context"
	"time"
)

type ScheduleRepository interface {
	GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (Schedule, error)
	GetOverrides(ctx context.Context, employeeID string, from, to time.Time) ([]Override, error)
}
