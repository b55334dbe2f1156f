package attendance

import (
	"encoding/json"
	"time"
)

type Attendance struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	TimeIn     *time.Time
	TimeOut    *time.Time
	IsDayOff   bool

	// Denormalized from the holiday calendar when the record is finalized.
	IsRegularHoliday bool
	IsSpecialHoliday bool

	// Derived on finalization, always recomputed in full.
	TotalHours             float64
	LateMinutes            int
	UndertimeMinutes       int
	NightDifferentialHours float64
	RestDayHoursWorked     float64
	IsUndertime            bool
	IsHalfday              bool
	IsEntitledHoliday      bool
	PayrollBreakdown       json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined
	EmployeeName *string
}

// IsOpen reports whether the employee clocked in but has not clocked out.
func (a Attendance) IsOpen() bool {
	return a.TimeIn != nil && a.TimeOut == nil
}

func (a Attendance) IsFinalized() bool {
	return a.TimeIn != nil && a.TimeOut != nil
}

// Segment is the time arithmetic of one shift against its schedule.
type Segment struct {
	TotalHours             float64
	ElapsedHours           float64
	BreakHours             float64 // deducted break, 0 when the shift was too short
	LateMinutes            int
	UndertimeMinutes       int
	NightDifferentialHours float64
	ScheduledHours         float64
	IsUndertime            bool
	IsHalfday              bool
}
