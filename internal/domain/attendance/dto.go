package attendance

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type ClockInRequest struct {
	CompanyID  string `json:"-"`
	EmployeeID string `json:"employee_id"`
	TimeIn     string `json:"time_in"` // RFC3339
	IsDayOff   bool   `json:"is_dayoff"`

	ParsedTimeIn time.Time `json:"-"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if t, ok := validator.IsValidDateTime(r.TimeIn); !ok {
		errs = append(errs, validator.ValidationError{Field: "time_in", Message: "time_in must be an RFC3339 timestamp"})
	} else {
		r.ParsedTimeIn = t
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockOutRequest struct {
	ID        string `json:"-"`
	CompanyID string `json:"-"`
	TimeOut   string `json:"time_out"` // RFC3339

	// OwnRecordOnly restricts the caller to records of EmployeeID.
	OwnRecordOnly bool   `json:"-"`
	EmployeeID    string `json:"-"`

	ParsedTimeOut time.Time `json:"-"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "attendance id is required"})
	}
	if t, ok := validator.IsValidDateTime(r.TimeOut); !ok {
		errs = append(errs, validator.ValidationError{Field: "time_out", Message: "time_out must be an RFC3339 timestamp"})
	} else {
		r.ParsedTimeOut = t
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID                     string          `json:"id"`
	EmployeeID             string          `json:"employee_id"`
	Date                   string          `json:"date"`
	TimeIn                 *string         `json:"time_in,omitempty"`
	TimeOut                *string         `json:"time_out,omitempty"`
	IsDayOff               bool            `json:"is_dayoff"`
	IsRegularHoliday       bool            `json:"is_regular_holiday"`
	IsSpecialHoliday       bool            `json:"is_special_holiday"`
	TotalHours             float64         `json:"total_hours"`
	LateMinutes            int             `json:"late_minutes"`
	UndertimeMinutes       int             `json:"undertime_minutes"`
	NightDifferentialHours float64         `json:"night_differential_hours"`
	RestDayHoursWorked     float64         `json:"rest_day_hours_worked"`
	IsUndertime            bool            `json:"is_undertime"`
	IsHalfday              bool            `json:"is_halfday"`
	IsEntitledHoliday      bool            `json:"is_entitled_holiday"`
	HasSchedule            bool            `json:"has_schedule"`
	PayrollBreakdown       json.RawMessage `json:"payroll_breakdown,omitempty"`
	UpdatedAt              string          `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance, hasSchedule bool) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                     a.ID,
		EmployeeID:             a.EmployeeID,
		Date:                   a.Date.Format("2006-01-02"),
		IsDayOff:               a.IsDayOff,
		IsRegularHoliday:       a.IsRegularHoliday,
		IsSpecialHoliday:       a.IsSpecialHoliday,
		TotalHours:             a.TotalHours,
		LateMinutes:            a.LateMinutes,
		UndertimeMinutes:       a.UndertimeMinutes,
		NightDifferentialHours: a.NightDifferentialHours,
		RestDayHoursWorked:     a.RestDayHoursWorked,
		IsUndertime:            a.IsUndertime,
		IsHalfday:              a.IsHalfday,
		IsEntitledHoliday:      a.IsEntitledHoliday,
		HasSchedule:            hasSchedule,
		PayrollBreakdown:       a.PayrollBreakdown,
		UpdatedAt:              a.UpdatedAt.Format(time.RFC3339),
	}
	if a.TimeIn != nil {
		s := a.TimeIn.Format(time.RFC3339)
		resp.TimeIn = &s
	}
	if a.TimeOut != nil {
		s := a.TimeOut.Format(time.RFC3339)
		resp.TimeOut = &s
	}
	return resp
}
