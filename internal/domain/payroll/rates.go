package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionBracket is one row of the social-insurance table. MaxSalary nil means open-ended.
type ContributionBracket struct {
	MinSalary decimal.Decimal  `json:"min"`
	MaxSalary *decimal.Decimal `json:"max,omitempty"`
	Employee  decimal.Decimal  `json:"employee"`
	Employer  decimal.Decimal  `json:"employer"`
}

// TaxBracket taxes income above Floor at Rate, on top of BaseTax.
type TaxBracket struct {
	Floor   decimal.Decimal `json:"floor"`
	BaseTax decimal.Decimal `json:"base_tax"`
	Rate    decimal.Decimal `json:"rate"`
}

type SocialInsuranceRule struct {
	Brackets []ContributionBracket `json:"brackets"`
	// Used only when Brackets is empty.
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
}

type HealthInsuranceRule struct {
	Rate  decimal.Decimal `json:"rate"` // combined, split evenly
	Floor decimal.Decimal `json:"floor"`
	Cap   decimal.Decimal `json:"cap"`
}

type HousingFundRule struct {
	Threshold    decimal.Decimal `json:"threshold"`
	LowRate      decimal.Decimal `json:"low_rate"`
	HighRate     decimal.Decimal `json:"high_rate"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
	EmployeeCap  decimal.Decimal `json:"employee_cap"`
	EmployerCap  decimal.Decimal `json:"employer_cap"`
}

// Rates is the fully resolved business configuration for one run.
type Rates struct {
	StandardDailyHours       float64         `json:"standard_daily_hours"`
	MonthlyWorkingDays       float64         `json:"monthly_working_days"`
	OvertimeMultiplier       decimal.Decimal `json:"overtime_multiplier"`
	RestDayMultiplier        decimal.Decimal `json:"dayoff_multiplier"`
	RegularHolidayMultiplier decimal.Decimal `json:"holiday_regular_multiplier"`
	SpecialHolidayMultiplier decimal.Decimal `json:"holiday_special_multiplier"`
	NightDifferentialRate    decimal.Decimal `json:"night_differential_rate"`
	LatePenaltyRate          decimal.Decimal `json:"late_penalty_rate"`
	UndertimePenaltyRate     decimal.Decimal `json:"undertime_penalty_rate"`
	HolidayNotWorkedRate     decimal.Decimal `json:"holiday_not_worked_rate"`

	SocialInsurance SocialInsuranceRule `json:"social_insurance"`
	HealthInsurance HealthInsuranceRule `json:"health_insurance"`
	HousingFund     HousingFundRule     `json:"housing_fund"`
	IncomeTax       []TaxBracket        `json:"income_tax"`
}

// Multiplier is the product of the day-type factors, times the overtime
// factor for overtime buckets. Night differential is priced separately.
func (r Rates) Multiplier(key PremiumKey) decimal.Decimal {
	m := decimal.NewFromInt(1)
	if key.RestDay {
		m = m.Mul(r.RestDayMultiplier)
	}
	switch key.Holiday {
	case HolidayRegular:
		m = m.Mul(r.RegularHolidayMultiplier)
	case HolidaySpecial:
		m = m.Mul(r.SpecialHolidayMultiplier)
	}
	if key.Overtime {
		m = m.Mul(r.OvertimeMultiplier)
	}
	return m
}

type DataType string

const (
	DataTypeInteger DataType = "integer"
	DataTypeDecimal DataType = "decimal"
	DataTypeBoolean DataType = "boolean"
	DataTypeString  DataType = "string"
	DataTypeJSON    DataType = "json"
)

// ConfigEntry is one versioned row of the payroll_configs store. A nil
// CompanyID marks a global row that any company inherits.
type ConfigEntry struct {
	ID            string
	CompanyID     *string
	Key           string
	Value         string
	DataType      DataType
	EffectiveDate time.Time
	IsActive      bool
	Description   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ConfigSource string

const (
	SourceDatabase ConfigSource = "database"
	SourceDefault  ConfigSource = "default"
)

type ResolvedConfig struct {
	AsOf     time.Time
	Rates    Rates
	Sources  map[string]ConfigSource
	Warnings []string
}
