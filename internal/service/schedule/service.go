package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

type CalendarServiceImpl struct {
	schedule.ScheduleRepository
	holiday.HolidayRepository
}

func NewCalendarService(scheduleRepo schedule.ScheduleRepository, holidayRepo holiday.HolidayRepository) schedule.CalendarService {
	return &CalendarServiceImpl{
		ScheduleRepository: scheduleRepo,
		HolidayRepository:  holidayRepo,
	}
}

// Calendar implements schedule.CalendarService.
// A missing schedule degrades to the default one instead of failing.
func (s *CalendarServiceImpl) Calendar(ctx context.Context, companyID, employeeID string, from, to time.Time) (schedule.DayResolver, error) {
	var sched *schedule.Schedule
	found, err := s.ScheduleRepository.GetByEmployeeID(ctx, employeeID, companyID)
	switch {
	case err == nil:
		sched = &found
	case errors.Is(err, schedule.ErrScheduleNotFound):
	default:
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	overrides, err := s.ScheduleRepository.GetOverrides(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule overrides: %w", err)
	}

	holidays, err := s.HolidayRepository.GetActiveBetween(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}

	return NewCalendar(sched, overrides, holidays), nil
}

// Resolve implements schedule.CalendarService.
func (s *CalendarServiceImpl) Resolve(ctx context.Context, companyID, employeeID string, date time.Time, isDayOff bool) (schedule.Resolution, error) {
	cal, err := s.Calendar(ctx, companyID, employeeID, date, date)
	if err != nil {
		return schedule.Resolution{}, err
	}
	return cal.Resolve(date, isDayOff), nil
}
