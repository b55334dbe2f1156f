package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// PeriodShare is the part of one calendar month a pay period covers. The
// statutory tables are monthly; a partial period pays the share of what its
// monthly-equivalent gross would owe. The zero value is a whole month.
type PeriodShare struct {
	Days      int
	MonthDays int
}

// NewPeriodShare expects start and end in the same calendar month.
func NewPeriodShare(start, end time.Time) PeriodShare {
	y, m, _ := start.Date()
	monthDays := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	days := int(dateOf(end).Sub(dateOf(start)).Hours()/24) + 1
	return PeriodShare{Days: days, MonthDays: monthDays}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p PeriodShare) IsWholeMonth() bool {
	return p.Days <= 0 || p.MonthDays <= 0 || p.Days >= p.MonthDays
}

func (p PeriodShare) toMonthly(v decimal.Decimal) decimal.Decimal {
	if p.IsWholeMonth() {
		return v
	}
	return v.Mul(decimal.NewFromInt(int64(p.MonthDays))).Div(decimal.NewFromInt(int64(p.Days)))
}

func (p PeriodShare) fromMonthly(v decimal.Decimal) decimal.Decimal {
	if p.IsWholeMonth() {
		return v
	}
	return v.Mul(decimal.NewFromInt(int64(p.Days))).Div(decimal.NewFromInt(int64(p.MonthDays)))
}

type DeductionInput struct {
	GrossPay         decimal.Decimal
	Period           PeriodShare
	Individual       map[string]decimal.Decimal
	LatePenalty      decimal.Decimal
	UndertimePenalty decimal.Decimal
}

// CalculateDeductions applies the statutory tables to the monthly equivalent
// of gross pay and scales the result back to the period, then adds penalties
// and the individual ledger. Employee-side contributions are each capped at
// gross pay. Every amount is rounded to cents.
func CalculateDeductions(in DeductionInput, rates payroll.Rates) payroll.DeductionResult {
	gross := in.GrossPay
	share := in.Period
	var d payroll.DeductionResult

	if gross.IsPositive() {
		monthly := share.toMonthly(gross)
		ssEE, ssER := SocialInsurance(monthly, rates.SocialInsurance)
		hiEE, hiER := HealthInsurance(monthly, rates.HealthInsurance)
		hfEE, hfER := HousingFund(monthly, rates.HousingFund)

		d.SocialInsuranceEmployee, d.SocialInsuranceEmployer = share.fromMonthly(ssEE), share.fromMonthly(ssER)
		d.HealthInsuranceEmployee, d.HealthInsuranceEmployer = share.fromMonthly(hiEE), share.fromMonthly(hiER)
		d.HousingFundEmployee, d.HousingFundEmployer = share.fromMonthly(hfEE), share.fromMonthly(hfER)

		d.SocialInsuranceEmployee = decimal.Min(d.SocialInsuranceEmployee, gross)
		d.HealthInsuranceEmployee = decimal.Min(d.HealthInsuranceEmployee, gross)
		d.HousingFundEmployee = decimal.Min(d.HousingFundEmployee, gross)
	}

	d.SocialInsuranceEmployee = payroll.RoundMoney(d.SocialInsuranceEmployee)
	d.SocialInsuranceEmployer = payroll.RoundMoney(d.SocialInsuranceEmployer)
	d.HealthInsuranceEmployee = payroll.RoundMoney(d.HealthInsuranceEmployee)
	d.HealthInsuranceEmployer = payroll.RoundMoney(d.HealthInsuranceEmployer)
	d.HousingFundEmployee = payroll.RoundMoney(d.HousingFundEmployee)
	d.HousingFundEmployer = payroll.RoundMoney(d.HousingFundEmployer)

	contributions := d.SocialInsuranceEmployee.Add(d.HealthInsuranceEmployee).Add(d.HousingFundEmployee)
	d.TaxableIncome = decimal.Max(gross.Sub(contributions), decimal.Zero)
	d.IncomeTax = payroll.RoundMoney(share.fromMonthly(IncomeTax(share.toMonthly(d.TaxableIncome), rates.IncomeTax)))

	d.LatePenalty = payroll.RoundMoney(in.LatePenalty)
	d.UndertimePenalty = payroll.RoundMoney(in.UndertimePenalty)

	d.IndividualDetail = make(map[string]decimal.Decimal, len(in.Individual))
	for name, amount := range in.Individual {
		amount = payroll.RoundMoney(amount)
		d.IndividualDetail[name] = amount
		d.Individual = d.Individual.Add(amount)
	}

	d.TotalStatutory = contributions.Add(d.IncomeTax)
	d.TotalDeductions = d.TotalStatutory.Add(d.LatePenalty).Add(d.UndertimePenalty).Add(d.Individual)
	return d
}

// SocialInsurance looks the salary up in the bracket table. Salaries below the
// first bracket pay the first bracket, salaries above the top bracket pay the
// top bracket. With no table loaded it falls back to flat percentages.
func SocialInsurance(salary decimal.Decimal, rule payroll.SocialInsuranceRule) (employee, employer decimal.Decimal) {
	if len(rule.Brackets) == 0 {
		return salary.Mul(rule.EmployeeRate), salary.Mul(rule.EmployerRate)
	}

	chosen := rule.Brackets[0]
	for _, b := range rule.Brackets {
		if salary.LessThan(b.MinSalary) {
			break
		}
		chosen = b
	}
	return chosen.Employee, chosen.Employer
}

// HealthInsurance charges the combined rate on salary clamped to
// [Floor, Cap] and splits the premium evenly.
func HealthInsurance(salary decimal.Decimal, rule payroll.HealthInsuranceRule) (employee, employer decimal.Decimal) {
	base := salary
	if base.LessThan(rule.Floor) {
		base = rule.Floor
	}
	if rule.Cap.IsPositive() && base.GreaterThan(rule.Cap) {
		base = rule.Cap
	}
	premium := base.Mul(rule.Rate)
	employee = premium.Div(two)
	return employee, premium.Sub(employee)
}

// HousingFund charges LowRate below Threshold and HighRate at or above it.
// A zero cap means uncapped.
func HousingFund(salary decimal.Decimal, rule payroll.HousingFundRule) (employee, employer decimal.Decimal) {
	rate := rule.HighRate
	if salary.LessThan(rule.Threshold) {
		rate = rule.LowRate
	}
	employee = salary.Mul(rate)
	if rule.EmployeeCap.IsPositive() {
		employee = decimal.Min(employee, rule.EmployeeCap)
	}
	employer = salary.Mul(rule.EmployerRate)
	if rule.EmployerCap.IsPositive() {
		employer = decimal.Min(employer, rule.EmployerCap)
	}
	return employee, employer
}

// IncomeTax applies the progressive table: the bracket whose floor the income
// exceeds contributes its base tax plus its rate on the excess.
func IncomeTax(taxable decimal.Decimal, brackets []payroll.TaxBracket) decimal.Decimal {
	var chosen *payroll.TaxBracket
	for i := range brackets {
		if taxable.GreaterThan(brackets[i].Floor) {
			chosen = &brackets[i]
		}
	}
	if chosen == nil {
		return decimal.Zero
	}
	return chosen.BaseTax.Add(taxable.Sub(chosen.Floor).Mul(chosen.Rate))
}
