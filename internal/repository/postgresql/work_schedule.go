package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}

// GetByEmployeeID implements schedule.ScheduleRepository.
func (w *workScheduleRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (schedule.Schedule, error) {
	q := GetQuerier(ctx, w.db)

	// TIME columns are read as HH24:MI text and parsed into schedule.ClockTime.
	query := `
		SELECT ws.id, ws.company_id, ws.name,
			to_char(ws.shift_start, 'HH24:MI'),
			to_char(ws.shift_end, 'HH24:MI'),
			to_char(ws.break_start, 'HH24:MI'),
			to_char(ws.break_end, 'HH24:MI'),
			ws.break_duration, ws.days_of_week, ws.created_at, ws.updated_at
		FROM employees e
		JOIN work_schedules ws ON ws.id = e.work_schedule_id
		WHERE e.id = $1 AND e.company_id = $2 AND ws.deleted_at IS NULL
	`

	var (
		s                    schedule.Schedule
		shiftStart, shiftEnd string
		breakStart, breakEnd *string
		breakDuration        *int32
		daysOfWeek           []int32
	)
	err := q.QueryRow(ctx, query, employeeID, companyID).Scan(
		&s.ID, &s.CompanyID, &s.Name,
		&shiftStart, &shiftEnd, &breakStart, &breakEnd,
		&breakDuration, &daysOfWeek, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Schedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.Schedule{}, fmt.Errorf("failed to get work schedule for employee %s: %w", employeeID, err)
	}

	if s.ShiftStart, err = schedule.ParseClockTime(shiftStart); err != nil {
		return schedule.Schedule{}, err
	}
	if s.ShiftEnd, err = schedule.ParseClockTime(shiftEnd); err != nil {
		return schedule.Schedule{}, err
	}
	if s.BreakStart, err = parseOptionalClock(breakStart); err != nil {
		return schedule.Schedule{}, err
	}
	if s.BreakEnd, err = parseOptionalClock(breakEnd); err != nil {
		return schedule.Schedule{}, err
	}
	if breakDuration != nil {
		s.BreakDuration = int(*breakDuration)
	}
	for _, d := range daysOfWeek {
		s.DaysOfWeek = append(s.DaysOfWeek, int(d))
	}

	return s, nil
}

// GetOverrides implements schedule.ScheduleRepository.
func (w *workScheduleRepositoryImpl) GetOverrides(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.Override, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, employee_id, override_type, value, effective_from, effective_until, created_at
		FROM employee_schedule_overrides
		WHERE employee_id = $1
			AND effective_from <= $3::date
			AND (effective_until IS NULL OR effective_until >= $2::date)
		ORDER BY effective_from, created_at
	`

	rows, err := q.Query(ctx, query, employeeID, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule overrides: %w", err)
	}
	defer rows.Close()

	var overrides []schedule.Override
	for rows.Next() {
		var o schedule.Override
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.Type, &o.Value, &o.EffectiveFrom, &o.EffectiveUntil, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule override: %w", err)
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule override rows: %w", err)
	}

	return overrides, nil
}

func parseOptionalClock(s *string) (*schedule.ClockTime, error) {
	if s == nil {
		return nil, nil
	}
	c, err := schedule.ParseClockTime(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
