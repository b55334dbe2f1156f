package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.company_id, a.date, a.time_in, a.time_out, a.is_dayoff,
	a.is_regular_holiday, a.is_special_holiday,
	a.total_hours, a.late_minutes, a.undertime_minutes, a.night_differential_hours, a.rest_day_hours_worked,
	a.is_undertime, a.is_halfday, a.is_entitled_holiday, a.payroll_breakdown,
	a.created_at, a.updated_at, e.full_name`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		a         attendance.Attendance
		breakdown []byte
	)
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.CompanyID, &a.Date, &a.TimeIn, &a.TimeOut, &a.IsDayOff,
		&a.IsRegularHoliday, &a.IsSpecialHoliday,
		&a.TotalHours, &a.LateMinutes, &a.UndertimeMinutes, &a.NightDifferentialHours, &a.RestDayHoursWorked,
		&a.IsUndertime, &a.IsHalfday, &a.IsEntitledHoliday, &breakdown,
		&a.CreatedAt, &a.UpdatedAt, &a.EmployeeName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if len(breakdown) > 0 {
		a.PayrollBreakdown = breakdown
	}
	return a, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (id, employee_id, company_id, date, time_in, is_dayoff, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3::date, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID, newAttendance.CompanyID, dateParam(newAttendance.Date), newAttendance.TimeIn, newAttendance.IsDayOff,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1 AND a.company_id = $2
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id %s: %w", id, err)
	}

	return att, nil
}

// ExistsByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ExistsByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE employee_id = $1 AND date = $2::date AND company_id = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, dateParam(date), companyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check attendance existence: %w", err)
	}
	return exists, nil
}

// GetByEmployeeBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeBetween(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.company_id = $2
			AND a.date BETWEEN $3::date AND $4::date
		ORDER BY a.date
	`

	return a.list(ctx, q, query, employeeID, companyID, dateParam(from), dateParam(to))
}

// GetOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.time_in IS NOT NULL AND a.time_out IS NULL
			AND a.date < $1::date
		ORDER BY a.date, a.id
	`

	return a.list(ctx, q, query, dateParam(cutoff))
}

func (a *attendanceRepository) list(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.Attendance, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}

	return out, nil
}

// UpdateDerived implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateDerived(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			time_out = $2,
			is_regular_holiday = $3,
			is_special_holiday = $4,
			total_hours = $5,
			late_minutes = $6,
			undertime_minutes = $7,
			night_differential_hours = $8,
			rest_day_hours_worked = $9,
			is_undertime = $10,
			is_halfday = $11,
			is_entitled_holiday = $12,
			payroll_breakdown = $13,
			updated_at = NOW()
		WHERE id = $1
	`

	var breakdown []byte
	if len(att.PayrollBreakdown) > 0 {
		breakdown = att.PayrollBreakdown
	}

	tag, err := q.Exec(ctx, query,
		att.ID, att.TimeOut, att.IsRegularHoliday, att.IsSpecialHoliday,
		att.TotalHours, att.LateMinutes, att.UndertimeMinutes, att.NightDifferentialHours, att.RestDayHoursWorked,
		att.IsUndertime, att.IsHalfday, att.IsEntitledHoliday, breakdown,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance %s: %w", att.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}
