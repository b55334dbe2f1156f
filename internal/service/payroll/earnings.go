package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// HourlyRate normalizes the contract rate to an hourly figure for one day.
// A custom_rate override replaces the contract rate; hours_per_day and
// monthly_working_days overrides replace the configured divisors.
func HourlyRate(comp employee.Compensation, adj schedule.Adjustments, rates payroll.Rates) (decimal.Decimal, error) {
	rate := comp.Rate
	if adj.CustomRate != nil {
		rate = *adj.CustomRate
	}
	if !rate.IsPositive() {
		return decimal.Zero, &payroll.CalculationError{EmployeeID: comp.EmployeeID, Field: "rate", Err: payroll.ErrInvalidRate}
	}

	hoursPerDay := rates.StandardDailyHours
	if adj.HoursPerDay != nil && *adj.HoursPerDay > 0 {
		hoursPerDay = *adj.HoursPerDay
	}
	monthlyDays := rates.MonthlyWorkingDays
	if adj.MonthlyWorkingDays != nil && *adj.MonthlyWorkingDays > 0 {
		monthlyDays = *adj.MonthlyWorkingDays
	}

	switch comp.RateType {
	case employee.RateTypeHourly:
		return rate, nil
	case employee.RateTypeDaily:
		return rate.Div(decimal.NewFromFloat(hoursPerDay)), nil
	case employee.RateTypeMonthly:
		return rate.Div(decimal.NewFromFloat(monthlyDays * hoursPerDay)), nil
	default:
		return decimal.Zero, &payroll.CalculationError{EmployeeID: comp.EmployeeID, Field: "rate_type", Err: payroll.ErrUnsupportedRateType}
	}
}

// DailyRate is the hourly rate times the day's regular hours.
func DailyRate(hourly decimal.Decimal, res schedule.Resolution, rates payroll.Rates) decimal.Decimal {
	return hourly.Mul(decimal.NewFromFloat(StandardHours(res, rates)))
}

// PriceBreakdown turns a breakdown into money. Plain-day regular hours go to
// base pay, stacked-day regular hours to holiday pay, overtime hours to
// overtime pay, each at its bucket multiplier. Night hours additionally earn
// the night differential rate on the hourly base. Nothing is rounded here.
func PriceBreakdown(hourly decimal.Decimal, b payroll.Breakdown, rates payroll.Rates) payroll.EarningsResult {
	var e payroll.EarningsResult
	for _, leaf := range b.Leaves {
		base := decimal.NewFromFloat(leaf.Hours).Mul(hourly)

		switch {
		case leaf.Key.Overtime:
			e.OvertimePay = e.OvertimePay.Add(base.Mul(rates.Multiplier(leaf.Key)))
		case leaf.Key.Stacked():
			e.HolidayPay = e.HolidayPay.Add(base.Mul(rates.Multiplier(leaf.Key)))
		default:
			e.BasePay = e.BasePay.Add(base)
		}

		if leaf.Key.NightDiff {
			e.NightDifferential = e.NightDifferential.Add(base.Mul(rates.NightDifferentialRate))
		}
	}
	e.GrossPay = e.BasePay.Add(e.OvertimePay).Add(e.HolidayPay).Add(e.NightDifferential).Add(e.LeavePay)
	return e
}

// CalculateEarnings prices one classified record for an employee.
func CalculateEarnings(comp employee.Compensation, adj schedule.Adjustments, b payroll.Breakdown, rates payroll.Rates) (payroll.EarningsResult, error) {
	hourly, err := HourlyRate(comp, adj, rates)
	if err != nil {
		return payroll.EarningsResult{}, err
	}
	return PriceBreakdown(hourly, b, rates), nil
}

// HolidayNotWorkedPay is due for an entitled employee's unworked regular holiday.
func HolidayNotWorkedPay(daily decimal.Decimal, rates payroll.Rates) payroll.EarningsResult {
	pay := daily.Mul(rates.HolidayNotWorkedRate)
	return payroll.EarningsResult{HolidayPay: pay, GrossPay: pay}
}

// LeavePay pays approved paid-leave days at the daily rate.
func LeavePay(days, daily decimal.Decimal) payroll.EarningsResult {
	pay := days.Mul(daily)
	return payroll.EarningsResult{LeavePay: pay, GrossPay: pay}
}
