package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All company-facing methods take companyID to prevent cross-company access.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)
	GetByID(ctx context.Context, id string, companyID string) (Attendance, error)
	ExistsByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error)

	// GetByEmployeeBetween returns every record dated within [from, to], open or not.
	GetByEmployeeBetween(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]Attendance, error)

	// GetOpenBefore returns open sessions across all companies dated before cutoff.
	GetOpenBefore(ctx context.Context, cutoff time.Time) ([]Attendance, error)

	// UpdateDerived writes time_out plus every derived field, keyed by attendance id.
	UpdateDerived(ctx context.Context, attendance Attendance) error
}
