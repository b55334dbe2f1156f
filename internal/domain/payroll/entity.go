package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// EarningsResult is money earned for one record or, summed, for a period.
// GrossPay always equals the sum of the other fields.
type EarningsResult struct {
	BasePay           decimal.Decimal `json:"base_pay"`
	OvertimePay       decimal.Decimal `json:"overtime_pay"`
	HolidayPay        decimal.Decimal `json:"holiday_pay"`
	NightDifferential decimal.Decimal `json:"night_differential"`
	LeavePay          decimal.Decimal `json:"leave_pay"`
	GrossPay          decimal.Decimal `json:"gross_pay"`
}

func (e EarningsResult) Add(o EarningsResult) EarningsResult {
	return EarningsResult{
		BasePay:           e.BasePay.Add(o.BasePay),
		OvertimePay:       e.OvertimePay.Add(o.OvertimePay),
		HolidayPay:        e.HolidayPay.Add(o.HolidayPay),
		NightDifferential: e.NightDifferential.Add(o.NightDifferential),
		LeavePay:          e.LeavePay.Add(o.LeavePay),
		GrossPay:          e.GrossPay.Add(o.GrossPay),
	}
}

// Rounded rounds each component to cents and recomputes GrossPay from the
// rounded parts so the decomposition still holds exactly.
func (e EarningsResult) Rounded() EarningsResult {
	r := EarningsResult{
		BasePay:           RoundMoney(e.BasePay),
		OvertimePay:       RoundMoney(e.OvertimePay),
		HolidayPay:        RoundMoney(e.HolidayPay),
		NightDifferential: RoundMoney(e.NightDifferential),
		LeavePay:          RoundMoney(e.LeavePay),
	}
	r.GrossPay = r.BasePay.Add(r.OvertimePay).Add(r.HolidayPay).Add(r.NightDifferential).Add(r.LeavePay)
	return r
}

type DeductionResult struct {
	SocialInsuranceEmployee decimal.Decimal            `json:"social_insurance_employee"`
	SocialInsuranceEmployer decimal.Decimal            `json:"social_insurance_employer"`
	HealthInsuranceEmployee decimal.Decimal            `json:"health_insurance_employee"`
	HealthInsuranceEmployer decimal.Decimal            `json:"health_insurance_employer"`
	HousingFundEmployee     decimal.Decimal            `json:"housing_fund_employee"`
	HousingFundEmployer     decimal.Decimal            `json:"housing_fund_employer"`
	TaxableIncome           decimal.Decimal            `json:"taxable_income"`
	IncomeTax               decimal.Decimal            `json:"income_tax"`
	LatePenalty             decimal.Decimal            `json:"late_penalty"`
	UndertimePenalty        decimal.Decimal            `json:"undertime_penalty"`
	Individual              decimal.Decimal            `json:"individual"`
	IndividualDetail        map[string]decimal.Decimal `json:"individual_detail,omitempty"`
	TotalStatutory          decimal.Decimal            `json:"total_statutory"`
	TotalDeductions         decimal.Decimal            `json:"total_deductions"`
}

// EmployerShare is what the company pays on top of gross.
func (d DeductionResult) EmployerShare() decimal.Decimal {
	return d.SocialInsuranceEmployer.Add(d.HealthInsuranceEmployer).Add(d.HousingFundEmployer)
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

type Payslip struct {
	ID           string
	RunID        string
	CompanyID    string
	EmployeeID   string
	EmployeeCode string
	EmployeeName string
	PeriodStart  time.Time
	PeriodEnd    time.Time

	RateType         string
	HourlyRate       decimal.Decimal
	DaysWorked       int
	TotalHours       float64
	OvertimeHours    float64
	NightDiffHours   float64
	LateMinutes      int
	UndertimeMinutes int
	HoursByBucket    map[string]float64

	Earnings     EarningsResult
	Deductions   DeductionResult
	Bonuses      map[string]decimal.Decimal
	TotalBonuses decimal.Decimal
	NetPay       decimal.Decimal

	CreatedAt time.Time
}

type RunStatus string

const (
	RunStatusCompleted      RunStatus = "completed"
	RunStatusPartialFailure RunStatus = "completed_with_errors"
)

// PayrollRun is the header row of one generation run.
type PayrollRun struct {
	ID              string
	CompanyID       string
	RunBy           string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Status          RunStatus
	EmployeeCount   int
	FailedCount     int
	TotalGross      decimal.Decimal
	TotalBonuses    decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	Warnings        []RunWarning
	CreatedAt       time.Time
}

type WarningCode string

const (
	WarningCalculationFailed WarningCode = "calculation_failed"
	WarningConfigDefault     WarningCode = "config_default"
	WarningAmbiguousHoliday  WarningCode = "ambiguous_holiday"
	WarningNoSchedule        WarningCode = "no_schedule"
	WarningOpenAttendance    WarningCode = "open_attendance"
)

type RunWarning struct {
	Code       WarningCode `json:"code"`
	EmployeeID string      `json:"employee_id,omitempty"`
	Message    string      `json:"message"`
}
