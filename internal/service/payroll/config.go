package payroll

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Config keys of the payroll_configs store.
const (
	KeyStandardDailyHours       = "standard_daily_hours"
	KeyMonthlyWorkingDays       = "monthly_working_days"
	KeyOvertimeMultiplier       = "overtime_multiplier"
	KeyDayOffMultiplier         = "dayoff_multiplier"
	KeyRegularHolidayMultiplier = "holiday_regular_multiplier"
	KeySpecialHolidayMultiplier = "holiday_special_multiplier"
	KeyNightDifferentialRate    = "night_differential_rate"
	KeyLatePenaltyRate          = "late_penalty_rate"
	KeyUndertimePenaltyRate     = "undertime_penalty_rate"
	KeyHolidayNotWorkedRate     = "holiday_not_worked_rate"

	KeySocialInsuranceTable        = "social_insurance_table"
	KeySocialInsuranceEmployeeRate = "social_insurance_employee_rate"
	KeySocialInsuranceEmployerRate = "social_insurance_employer_rate"
	KeyHealthInsuranceRate         = "health_insurance_rate"
	KeyHealthInsuranceFloor        = "health_insurance_floor"
	KeyHealthInsuranceCap          = "health_insurance_cap"
	KeyHousingFundThreshold        = "housing_fund_threshold"
	KeyHousingFundLowRate          = "housing_fund_low_rate"
	KeyHousingFundHighRate         = "housing_fund_high_rate"
	KeyHousingFundEmployerRate     = "housing_fund_employer_rate"
	KeyHousingFundEmployeeCap      = "housing_fund_employee_cap"
	KeyHousingFundEmployerCap      = "housing_fund_employer_cap"
	KeyIncomeTaxTable              = "income_tax_table"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultRates are the hardcoded fallbacks used when a key has no active row.
func DefaultRates() payroll.Rates {
	return payroll.Rates{
		StandardDailyHours:       8,
		MonthlyWorkingDays:       22,
		OvertimeMultiplier:       dec("1.25"),
		RestDayMultiplier:        dec("1.30"),
		RegularHolidayMultiplier: dec("2.00"),
		SpecialHolidayMultiplier: dec("1.30"),
		NightDifferentialRate:    dec("0.10"),
		LatePenaltyRate:          decimal.Zero,
		UndertimePenaltyRate:     decimal.Zero,
		HolidayNotWorkedRate:     dec("1.00"),
		SocialInsurance: payroll.SocialInsuranceRule{
			Brackets:     DefaultSocialInsuranceBrackets(),
			EmployeeRate: dec("0.05"),
			EmployerRate: dec("0.10"),
		},
		HealthInsurance: payroll.HealthInsuranceRule{
			Rate:  dec("0.055"),
			Floor: dec("10000"),
			Cap:   dec("100000"),
		},
		HousingFund: payroll.HousingFundRule{
			Threshold:    dec("1500"),
			LowRate:      dec("0.01"),
			HighRate:     dec("0.02"),
			EmployerRate: dec("0.02"),
			EmployeeCap:  dec("200"),
			EmployerCap:  dec("200"),
		},
		IncomeTax: DefaultIncomeTaxBrackets(),
	}
}

// DefaultSocialInsuranceBrackets is the 2025 schedule: monthly salary credits
// from 5,000 to 35,000 in steps of 500, 5% employee and 10% employer plus the
// employees' compensation share (10 below 15,000, 30 from there on).
func DefaultSocialInsuranceBrackets() []payroll.ContributionBracket {
	var brackets []payroll.ContributionBracket
	for msc := int64(5000); msc <= 35000; msc += 500 {
		credit := decimal.NewFromInt(msc)

		min := decimal.NewFromInt(msc - 250)
		if msc == 5000 {
			min = decimal.Zero
		}
		var max *decimal.Decimal
		if msc < 35000 {
			m := decimal.NewFromInt(msc + 250).Sub(dec("0.01"))
			max = &m
		}

		ec := decimal.NewFromInt(10)
		if msc >= 15000 {
			ec = decimal.NewFromInt(30)
		}

		brackets = append(brackets, payroll.ContributionBracket{
			MinSalary: min,
			MaxSalary: max,
			Employee:  credit.Mul(dec("0.05")),
			Employer:  credit.Mul(dec("0.10")).Add(ec),
		})
	}
	return brackets
}

// DefaultIncomeTaxBrackets is the monthly withholding table. The first
// bracket (up to 20,833, i.e. 250,000 a year) is exempt.
func DefaultIncomeTaxBrackets() []payroll.TaxBracket {
	return []payroll.TaxBracket{
		{Floor: decimal.Zero, BaseTax: decimal.Zero, Rate: decimal.Zero},
		{Floor: dec("20833"), BaseTax: decimal.Zero, Rate: dec("0.15")},
		{Floor: dec("33333"), BaseTax: dec("1875"), Rate: dec("0.20")},
		{Floor: dec("66667"), BaseTax: dec("8541.80"), Rate: dec("0.25")},
		{Floor: dec("166667"), BaseTax: dec("33541.80"), Rate: dec("0.30")},
		{Floor: dec("666667"), BaseTax: dec("183541.80"), Rate: dec("0.35")},
	}
}

type configField struct {
	key   string
	apply func(r *payroll.Rates, e payroll.ConfigEntry) error
}

var one = decimal.NewFromInt(1)

// multiplier rejects factors below 1 so a premium condition never lowers pay.
func multiplier(dst func(*payroll.Rates) *decimal.Decimal) func(*payroll.Rates, payroll.ConfigEntry) error {
	return func(r *payroll.Rates, e payroll.ConfigEntry) error {
		v, err := parseDecimal(e)
		if err != nil {
			return err
		}
		if v.LessThan(one) {
			return fmt.Errorf("%w: multiplier must be at least 1", payroll.ErrInvalidConfigValue)
		}
		*dst(r) = v
		return nil
	}
}

func nonNegativeDecimal(dst func(*payroll.Rates) *decimal.Decimal) func(*payroll.Rates, payroll.ConfigEntry) error {
	return func(r *payroll.Rates, e payroll.ConfigEntry) error {
		v, err := parseDecimal(e)
		if err != nil {
			return err
		}
		if v.IsNegative() {
			return fmt.Errorf("%w: must not be negative", payroll.ErrInvalidConfigValue)
		}
		*dst(r) = v
		return nil
	}
}

func positiveFloat(dst func(*payroll.Rates) *float64) func(*payroll.Rates, payroll.ConfigEntry) error {
	return func(r *payroll.Rates, e payroll.ConfigEntry) error {
		v, err := parseDecimal(e)
		if err != nil {
			return err
		}
		if !v.IsPositive() {
			return fmt.Errorf("%w: must be greater than zero", payroll.ErrInvalidConfigValue)
		}
		*dst(r) = v.InexactFloat64()
		return nil
	}
}

func parseDecimal(e payroll.ConfigEntry) (decimal.Decimal, error) {
	switch e.DataType {
	case payroll.DataTypeInteger:
		n, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not an integer", payroll.ErrInvalidConfigValue, e.Value)
		}
		return decimal.NewFromInt(n), nil
	case payroll.DataTypeDecimal, payroll.DataTypeString:
		v, err := decimal.NewFromString(e.Value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", payroll.ErrInvalidConfigValue, e.Value)
		}
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: data type %s cannot hold a number", payroll.ErrInvalidConfigValue, e.DataType)
	}
}

var configFields = []configField{
	{KeyStandardDailyHours, positiveFloat(func(r *payroll.Rates) *float64 { return &r.StandardDailyHours })},
	{KeyMonthlyWorkingDays, positiveFloat(func(r *payroll.Rates) *float64 { return &r.MonthlyWorkingDays })},
	{KeyOvertimeMultiplier, multiplier(func(r *payroll.Rates) *decimal.Decimal { return &r.OvertimeMultiplier })},
	{KeyDayOffMultiplier, multiplier(func(r *payroll.Rates) *decimal.Decimal { return &r.RestDayMultiplier })},
	{KeyRegularHolidayMultiplier, multiplier(func(r *payroll.Rates) *decimal.Decimal { return &r.RegularHolidayMultiplier })},
	{KeySpecialHolidayMultiplier, multiplier(func(r *payroll.Rates) *decimal.Decimal { return &r.SpecialHolidayMultiplier })},
	{KeyNightDifferentialRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.NightDifferentialRate })},
	{KeyLatePenaltyRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.LatePenaltyRate })},
	{KeyUndertimePenaltyRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.UndertimePenaltyRate })},
	{KeyHolidayNotWorkedRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HolidayNotWorkedRate })},

	{KeySocialInsuranceTable, applySocialInsuranceTable},
	{KeySocialInsuranceEmployeeRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.SocialInsurance.EmployeeRate })},
	{KeySocialInsuranceEmployerRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.SocialInsurance.EmployerRate })},
	{KeyHealthInsuranceRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HealthInsurance.Rate })},
	{KeyHealthInsuranceFloor, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HealthInsurance.Floor })},
	{KeyHealthInsuranceCap, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HealthInsurance.Cap })},
	{KeyHousingFundThreshold, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HousingFund.Threshold })},
	{KeyHousingFundLowRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HousingFund.LowRate })},
	{KeyHousingFundHighRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HousingFund.HighRate })},
	{KeyHousingFundEmployerRate, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HousingFund.EmployerRate })},
	{KeyHousingFundEmployeeCap, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HousingFund.EmployeeCap })},
	{KeyHousingFundEmployerCap, nonNegativeDecimal(func(r *payroll.Rates) *decimal.Decimal { return &r.HousingFund.EmployerCap })},
	{KeyIncomeTaxTable, applyIncomeTaxTable},
}

// ConfigKeys lists every key the engine reads, in resolution order.
func ConfigKeys() []string {
	keys := make([]string, len(configFields))
	for i, f := range configFields {
		keys[i] = f.key
	}
	return keys
}

func applySocialInsuranceTable(r *payroll.Rates, e payroll.ConfigEntry) error {
	if e.DataType != payroll.DataTypeJSON {
		return fmt.Errorf("%w: expected json, got %s", payroll.ErrInvalidConfigValue, e.DataType)
	}
	var brackets []payroll.ContributionBracket
	if err := json.Unmarshal([]byte(e.Value), &brackets); err != nil {
		return fmt.Errorf("%w: %v", payroll.ErrInvalidConfigValue, err)
	}
	sort.SliceStable(brackets, func(i, j int) bool { return brackets[i].MinSalary.LessThan(brackets[j].MinSalary) })
	// An empty table is valid and switches the calculator to the flat rates.
	r.SocialInsurance.Brackets = brackets
	return nil
}

func applyIncomeTaxTable(r *payroll.Rates, e payroll.ConfigEntry) error {
	if e.DataType != payroll.DataTypeJSON {
		return fmt.Errorf("%w: expected json, got %s", payroll.ErrInvalidConfigValue, e.DataType)
	}
	var brackets []payroll.TaxBracket
	if err := json.Unmarshal([]byte(e.Value), &brackets); err != nil {
		return fmt.Errorf("%w: %v", payroll.ErrInvalidConfigValue, err)
	}
	if len(brackets) == 0 {
		return fmt.Errorf("%w: income tax table is empty", payroll.ErrInvalidConfigValue)
	}
	sort.SliceStable(brackets, func(i, j int) bool { return brackets[i].Floor.LessThan(brackets[j].Floor) })
	r.IncomeTax = brackets
	return nil
}

// ResolveRates selects, for every key, the active row with the latest
// effective date on or before asOf. Company rows beat global rows. Keys with
// no usable row keep their default and are flagged with SourceDefault.
func ResolveRates(entries []payroll.ConfigEntry, asOf time.Time) payroll.ResolvedConfig {
	cutoff := asOf.Format("2006-01-02")

	chosen := make(map[string]payroll.ConfigEntry)
	for _, e := range entries {
		if !e.IsActive || e.EffectiveDate.Format("2006-01-02") > cutoff {
			continue
		}
		cur, ok := chosen[e.Key]
		if !ok || preferEntry(e, cur) {
			chosen[e.Key] = e
		}
	}

	resolved := payroll.ResolvedConfig{
		AsOf:    asOf,
		Rates:   DefaultRates(),
		Sources: make(map[string]payroll.ConfigSource, len(configFields)),
	}

	for _, f := range configFields {
		e, ok := chosen[f.key]
		if !ok {
			resolved.Sources[f.key] = payroll.SourceDefault
			resolved.Warnings = append(resolved.Warnings, fmt.Sprintf("%s: no active configuration, using default", f.key))
			continue
		}
		if err := f.apply(&resolved.Rates, e); err != nil {
			resolved.Sources[f.key] = payroll.SourceDefault
			resolved.Warnings = append(resolved.Warnings, fmt.Sprintf("%s: %v, using default", f.key, err))
			continue
		}
		resolved.Sources[f.key] = payroll.SourceDatabase
	}

	return resolved
}

func preferEntry(candidate, current payroll.ConfigEntry) bool {
	candCompany, curCompany := candidate.CompanyID != nil, current.CompanyID != nil
	if candCompany != curCompany {
		return candCompany
	}
	if !candidate.EffectiveDate.Equal(current.EffectiveDate) {
		return candidate.EffectiveDate.After(current.EffectiveDate)
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}

// DefaultedKeys returns the keys that fell back to defaults, sorted.
func DefaultedKeys(c payroll.ResolvedConfig) []string {
	var keys []string
	for k, src := range c.Sources {
		if src == payroll.SourceDefault {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
