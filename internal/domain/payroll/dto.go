package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GenerateRunRequest struct {
	CompanyID   string   `json:"-"`
	RunBy       string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids"` // empty means every active employee
	StartDate   string   `json:"start_date"`   // YYYY-MM-DD
	EndDate     string   `json:"end_date"`     // YYYY-MM-DD

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *GenerateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
	}
	if okStart && okEnd {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
		} else if start.Year() != end.Year() || start.Month() != end.Month() {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "pay period must fall within one calendar month"})
		}
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "invalid employee id: " + id})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	r.Start, r.End = start, end
	return nil
}

type PreviewRequest struct {
	CompanyID  string `json:"-"`
	EmployeeID string `json:"employee_id"`
	TimeIn     string `json:"time_in"`  // RFC3339
	TimeOut    string `json:"time_out"` // RFC3339
	IsDayOff   bool   `json:"is_dayoff"`

	ParsedTimeIn  time.Time `json:"-"`
	ParsedTimeOut time.Time `json:"-"`
}

func (r *PreviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if t, ok := validator.IsValidDateTime(r.TimeIn); ok {
		r.ParsedTimeIn = t
	} else {
		errs = append(errs, validator.ValidationError{Field: "time_in", Message: "time_in must be an RFC3339 timestamp"})
	}
	if t, ok := validator.IsValidDateTime(r.TimeOut); ok {
		r.ParsedTimeOut = t
	} else {
		errs = append(errs, validator.ValidationError{Field: "time_out", Message: "time_out must be an RFC3339 timestamp"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SegmentResponse struct {
	TotalHours             float64 `json:"total_hours"`
	LateMinutes            int     `json:"late_minutes"`
	UndertimeMinutes       int     `json:"undertime_minutes"`
	NightDifferentialHours float64 `json:"night_differential_hours"`
	IsUndertime            bool    `json:"is_undertime"`
	IsHalfday              bool    `json:"is_halfday"`
}

type DayResponse struct {
	Date        string  `json:"date"`
	IsRestDay   bool    `json:"is_rest_day"`
	HasSchedule bool    `json:"has_schedule"`
	HolidayName *string `json:"holiday_name,omitempty"`
	HolidayType *string `json:"holiday_type,omitempty"`
}

type PreviewResponse struct {
	Day        DayResponse     `json:"day"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Segment    SegmentResponse `json:"segment"`
	Breakdown  Breakdown       `json:"breakdown"`
	Earnings   EarningsResult  `json:"earnings"`
}

type RunHeaderResponse struct {
	ID              string          `json:"id"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	Status          RunStatus       `json:"status"`
	RunBy           string          `json:"run_by"`
	EmployeeCount   int             `json:"employee_count"`
	FailedCount     int             `json:"failed_count"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalBonuses    decimal.Decimal `json:"total_bonuses"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	CreatedAt       string          `json:"created_at"`
}

type PayslipResponse struct {
	ID               string                     `json:"id"`
	EmployeeID       string                     `json:"employee_id"`
	EmployeeCode     string                     `json:"employee_code"`
	EmployeeName     string                     `json:"employee_name"`
	RateType         string                     `json:"rate_type"`
	HourlyRate       decimal.Decimal            `json:"hourly_rate"`
	DaysWorked       int                        `json:"days_worked"`
	TotalHours       float64                    `json:"total_hours"`
	OvertimeHours    float64                    `json:"overtime_hours"`
	NightDiffHours   float64                    `json:"night_diff_hours"`
	LateMinutes      int                        `json:"late_minutes"`
	UndertimeMinutes int                        `json:"undertime_minutes"`
	HoursByBucket    map[string]float64         `json:"hours_by_bucket"`
	Earnings         EarningsResult             `json:"earnings"`
	Deductions       DeductionResult            `json:"deductions"`
	Bonuses          map[string]decimal.Decimal `json:"bonuses,omitempty"`
	TotalBonuses     decimal.Decimal            `json:"total_bonuses"`
	NetPay           decimal.Decimal            `json:"net_pay"`
}

type RunResponse struct {
	Run      RunHeaderResponse `json:"run"`
	Payslips []PayslipResponse `json:"payslips"`
	Warnings []RunWarning      `json:"warnings"`
}

func NewRunHeaderResponse(r PayrollRun) RunHeaderResponse {
	return RunHeaderResponse{
		ID:              r.ID,
		PeriodStart:     r.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       r.PeriodEnd.Format("2006-01-02"),
		Status:          r.Status,
		RunBy:           r.RunBy,
		EmployeeCount:   r.EmployeeCount,
		FailedCount:     r.FailedCount,
		TotalGross:      r.TotalGross,
		TotalBonuses:    r.TotalBonuses,
		TotalDeductions: r.TotalDeductions,
		TotalNet:        r.TotalNet,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:               p.ID,
		EmployeeID:       p.EmployeeID,
		EmployeeCode:     p.EmployeeCode,
		EmployeeName:     p.EmployeeName,
		RateType:         p.RateType,
		HourlyRate:       p.HourlyRate,
		DaysWorked:       p.DaysWorked,
		TotalHours:       p.TotalHours,
		OvertimeHours:    p.OvertimeHours,
		NightDiffHours:   p.NightDiffHours,
		LateMinutes:      p.LateMinutes,
		UndertimeMinutes: p.UndertimeMinutes,
		HoursByBucket:    p.HoursByBucket,
		Earnings:         p.Earnings,
		Deductions:       p.Deductions,
		Bonuses:          p.Bonuses,
		TotalBonuses:     p.TotalBonuses,
		NetPay:           p.NetPay,
	}
}

type ConfigResponse struct {
	AsOf     string                  `json:"as_of"`
	Rates    Rates                   `json:"rates"`
	Sources  map[string]ConfigSource `json:"sources"`
	Warnings []string                `json:"warnings"`
}

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
