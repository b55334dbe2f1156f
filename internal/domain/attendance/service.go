package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut stamps time_out and finalizes every derived field.
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	// Recalculate re-runs finalization after an administrative correction.
	Recalculate(ctx context.Context, id string, companyID string) (AttendanceResponse, error)

	// AutoCloseStale closes sessions left open before cutoff at their scheduled shift end.
	AutoCloseStale(ctx context.Context, cutoff time.Time) (int, error)
}
