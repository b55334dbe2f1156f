package schedule

import "errors"

var (
	ErrScheduleNotFound = errors.New("no schedule assigned to employee")
	ErrInvalidClockTime = errors.New("invalid clock time")
)
