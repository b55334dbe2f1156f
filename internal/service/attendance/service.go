package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	calendar   schedule.CalendarService
	classifier payroll.Classifier
	location   *time.Location
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	calendar schedule.CalendarService,
	classifier payroll.Classifier,
	location *time.Location,
) attendance.AttendanceService {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		calendar:             calendar,
		classifier:           classifier,
		location:             location,
	}
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID, req.CompanyID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	timeIn := req.ParsedTimeIn.In(s.location)
	date := LocalDate(timeIn, s.location)

	exists, err := s.AttendanceRepository.ExistsByEmployeeAndDate(ctx, req.EmployeeID, date, req.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if exists {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	created, err := s.AttendanceRepository.Create(ctx, attendance.Attendance{
		EmployeeID: req.EmployeeID,
		CompanyID:  req.CompanyID,
		Date:       date,
		TimeIn:     &timeIn,
		IsDayOff:   req.IsDayOff,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return attendance.NewAttendanceResponse(created, true), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a, err := s.AttendanceRepository.GetByID(ctx, req.ID, req.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if req.OwnRecordOnly && (req.EmployeeID == "" || a.EmployeeID != req.EmployeeID) {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}
	if a.TimeIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if a.TimeOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	finalized, hasSchedule, err := s.finalize(ctx, a, req.ParsedTimeOut)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(finalized, hasSchedule), nil
}

// Recalculate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Recalculate(ctx context.Context, id string, companyID string) (attendance.AttendanceResponse, error) {
	a, err := s.AttendanceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if a.TimeIn == nil || a.TimeOut == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}

	finalized, hasSchedule, err := s.finalize(ctx, a, *a.TimeOut)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(finalized, hasSchedule), nil
}

// AutoCloseStale implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AutoCloseStale(ctx context.Context, cutoff time.Time) (int, error) {
	open, err := s.AttendanceRepository.GetOpenBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to get open attendances: %w", err)
	}

	closed := 0
	for _, a := range open {
		if err := ctx.Err(); err != nil {
			return closed, err
		}

		date := LocalDate(a.Date, s.location)
		res, err := s.calendar.Resolve(ctx, a.CompanyID, a.EmployeeID, date, a.IsDayOff)
		if err != nil {
			slog.Error("Failed to resolve schedule for stale attendance", "attendance_id", a.ID, "error", err)
			continue
		}

		_, shiftEnd := res.Schedule.Bounds(date)
		timeIn := a.TimeIn.In(s.location)
		if shiftEnd.Before(timeIn) {
			shiftEnd = timeIn
		}

		if _, _, err := s.finalize(ctx, a, shiftEnd); err != nil {
			slog.Error("Failed to auto-close attendance", "attendance_id", a.ID, "employee_id", a.EmployeeID, "error", err)
			continue
		}
		closed++
		slog.Info("Auto-closed stale attendance", "attendance_id", a.ID, "employee_id", a.EmployeeID, "time_out", shiftEnd)
	}

	return closed, nil
}

// finalize recomputes every derived field from scratch and persists them with time_out.
func (s *AttendanceServiceImpl) finalize(ctx context.Context, a attendance.Attendance, timeOut time.Time) (attendance.Attendance, bool, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, a.EmployeeID, a.CompanyID)
	if err != nil {
		return attendance.Attendance{}, false, err
	}

	date := LocalDate(a.Date, s.location)
	res, err := s.calendar.Resolve(ctx, a.CompanyID, a.EmployeeID, date, a.IsDayOff)
	if err != nil {
		return attendance.Attendance{}, false, err
	}
	if len(res.Conflicts) > 0 {
		slog.Warn("Multiple active holidays on one date, using first",
			"date", date.Format("2006-01-02"), "used", res.Holiday.Name, "ignored", len(res.Conflicts))
	}

	timeIn := a.TimeIn.In(s.location)
	timeOut = timeOut.In(s.location)
	seg := ComputeSegment(timeIn, timeOut, res.Schedule)

	breakdown, err := s.classifier.Classify(ctx, a.CompanyID, payroll.ShiftInput{
		TimeIn:     timeIn,
		TimeOut:    timeOut,
		Segment:    seg,
		Resolution: res,
	})
	if err != nil {
		return attendance.Attendance{}, false, fmt.Errorf("failed to classify attendance: %w", err)
	}
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return attendance.Attendance{}, false, fmt.Errorf("failed to encode payroll breakdown: %w", err)
	}

	a.TimeOut = &timeOut
	ApplySegment(&a, seg, res, emp.EmploymentType)
	a.PayrollBreakdown = raw

	if err := s.AttendanceRepository.UpdateDerived(ctx, a); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, false, err
		}
		return attendance.Attendance{}, false, fmt.Errorf("failed to update attendance: %w", err)
	}

	return a, res.HasSchedule, nil
}

// ApplySegment copies the segment and calendar flags onto the record.
func ApplySegment(a *attendance.Attendance, seg attendance.Segment, res schedule.Resolution, employmentType employee.EmploymentType) {
	a.IsRegularHoliday = res.IsRegularHoliday()
	a.IsSpecialHoliday = res.IsSpecialHoliday()
	a.TotalHours = seg.TotalHours
	a.LateMinutes = seg.LateMinutes
	a.UndertimeMinutes = seg.UndertimeMinutes
	a.NightDifferentialHours = seg.NightDifferentialHours
	a.RestDayHoursWorked = 0
	if res.IsRestDay {
		a.RestDayHoursWorked = seg.TotalHours
	}
	a.IsUndertime = seg.IsUndertime
	a.IsHalfday = seg.IsHalfday
	a.IsEntitledHoliday = res.IsRegularHoliday() && employmentType.EntitledToHolidayPay()
}

// LocalDate returns midnight of t's calendar day, reinterpreted in loc.
// Dates read from DATE columns arrive as UTC midnight and keep their day.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
