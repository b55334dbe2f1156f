package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAlreadyCheckedIn   = errors.New("employee has already clocked in on this date")
	ErrNotCheckedIn       = errors.New("attendance has no clock-in time")
	ErrAlreadyCheckedOut  = errors.New("attendance is already clocked out")
)
