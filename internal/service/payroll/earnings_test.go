package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBreakdown_Scenarios(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		name      string
		breakdown payroll.Breakdown
		base      string
		overtime  string
		holiday   string
		night     string
		gross     string
	}{
		{
			name:      "regular day",
			breakdown: shift(at(11, 8, 0), at(11, 17, 0), lunchSchedule(), dayOpts{}),
			base:      "4000", overtime: "0", holiday: "0", night: "0", gross: "4000",
		},
		{
			name:      "regular day with two hours overtime",
			breakdown: shift(at(11, 8, 0), at(11, 19, 0), lunchSchedule(), dayOpts{}),
			base:      "4000", overtime: "1250", holiday: "0", night: "0", gross: "5250",
		},
		{
			name:      "rest day",
			breakdown: shift(at(14, 8, 0), at(14, 17, 0), lunchSchedule(), dayOpts{restDay: true}),
			base:      "0", overtime: "0", holiday: "5200", night: "0", gross: "5200",
		},
		{
			name:      "regular holiday on a rest day",
			breakdown: shift(at(14, 8, 0), at(14, 17, 0), lunchSchedule(), dayOpts{restDay: true, holiday: holiday.TypeRegular}),
			base:      "0", overtime: "0", holiday: "10400", night: "0", gross: "10400",
		},
		{
			name:      "all four premiums",
			breakdown: shift(at(14, 14, 0), at(15, 2, 0), noBreakSchedule(), dayOpts{restDay: true, holiday: holiday.TypeRegular}),
			base:      "0", overtime: "6500", holiday: "10400", night: "200", gross: "17100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := PriceBreakdown(fiveHundred, tt.breakdown, rates).Rounded()

			assertMoney(t, tt.base, e.BasePay)
			assertMoney(t, tt.overtime, e.OvertimePay)
			assertMoney(t, tt.holiday, e.HolidayPay)
			assertMoney(t, tt.night, e.NightDifferential)
			assertMoney(t, tt.gross, e.GrossPay)
		})
	}
}

func TestPriceBreakdown_SpecialHolidayStack(t *testing.T) {
	b := shift(at(14, 8, 0), at(14, 17, 0), lunchSchedule(), dayOpts{restDay: true, holiday: holiday.TypeSpecial})
	e := PriceBreakdown(fiveHundred, b, DefaultRates()).Rounded()

	// 8 x 500 x 1.3 x 1.3
	assertMoney(t, "6760", e.HolidayPay)
}

func TestPriceBreakdown_Decomposition(t *testing.T) {
	b := shift(at(11, 16, 17), at(12, 3, 41), lunchSchedule(), dayOpts{holiday: holiday.TypeSpecial})
	e := PriceBreakdown(decimal.RequireFromString("123.45"), b, DefaultRates()).Rounded()

	sum := e.BasePay.Add(e.OvertimePay).Add(e.HolidayPay).Add(e.NightDifferential).Add(e.LeavePay)
	assert.True(t, sum.Equal(e.GrossPay))
}

func TestPriceBreakdown_MonotonicInMultipliers(t *testing.T) {
	b := shift(at(14, 14, 0), at(15, 2, 0), noBreakSchedule(), dayOpts{restDay: true, holiday: holiday.TypeSpecial})
	low := DefaultRates()
	high := DefaultRates()
	high.OvertimeMultiplier = money("1.50")
	high.SpecialHolidayMultiplier = money("1.50")
	high.NightDifferentialRate = money("0.20")

	lowPay := PriceBreakdown(fiveHundred, b, low)
	highPay := PriceBreakdown(fiveHundred, b, high)

	assert.True(t, highPay.GrossPay.GreaterThan(lowPay.GrossPay))
	assert.True(t, highPay.OvertimePay.GreaterThanOrEqual(lowPay.OvertimePay))
	assert.True(t, highPay.HolidayPay.GreaterThanOrEqual(lowPay.HolidayPay))
}

func TestPriceBreakdown_MonotonicInConditions(t *testing.T) {
	rates := DefaultRates()
	gross := func(in, out time.Time, o dayOpts) decimal.Decimal {
		return PriceBreakdown(fiveHundred, shift(in, out, noBreakSchedule(), o), rates).GrossPay
	}

	plain := dayOpts{}
	rest := dayOpts{restDay: true}
	special := dayOpts{holiday: holiday.TypeSpecial}
	regular := dayOpts{holiday: holiday.TypeRegular}
	restSpecial := dayOpts{restDay: true, holiday: holiday.TypeSpecial}
	restRegular := dayOpts{restDay: true, holiday: holiday.TypeRegular}

	// Each pair adds one condition to the same twelve hours.
	pairs := []struct {
		name  string
		base  dayOpts
		added dayOpts
	}{
		{"rest day on a plain day", plain, rest},
		{"special holiday on a plain day", plain, special},
		{"regular holiday on a plain day", plain, regular},
		{"rest day on a special holiday", special, restSpecial},
		{"rest day on a regular holiday", regular, restRegular},
		{"special holiday on a rest day", rest, restSpecial},
		{"regular holiday on a rest day", rest, restRegular},
	}
	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			before := gross(at(11, 14, 0), at(12, 2, 0), p.base)
			after := gross(at(11, 14, 0), at(12, 2, 0), p.added)
			assert.True(t, after.GreaterThan(before), "want %s > %s", after, before)
		})
	}

	// The same eight hours moved into the night window add the differential.
	for _, o := range []dayOpts{plain, rest, special, regular, restSpecial, restRegular} {
		day := gross(at(11, 8, 0), at(11, 16, 0), o)
		night := gross(at(11, 22, 0), at(12, 6, 0), o)
		assert.True(t, night.GreaterThan(day), "opts %+v: want %s > %s", o, night, day)
	}
}

func TestHourlyRate(t *testing.T) {
	rates := DefaultRates()
	ten := 10.0
	twenty := 20.0
	custom := money("600")

	tests := []struct {
		name string
		comp employee.Compensation
		adj  schedule.Adjustments
		want string
	}{
		{"hourly", employee.Compensation{Rate: money("500"), RateType: employee.RateTypeHourly}, schedule.Adjustments{}, "500"},
		{"daily", employee.Compensation{Rate: money("4000"), RateType: employee.RateTypeDaily}, schedule.Adjustments{}, "500"},
		{"monthly", employee.Compensation{Rate: money("88000"), RateType: employee.RateTypeMonthly}, schedule.Adjustments{}, "500"},
		{"daily with hours override", employee.Compensation{Rate: money("4000"), RateType: employee.RateTypeDaily}, schedule.Adjustments{HoursPerDay: &ten}, "400"},
		{"monthly with days override", employee.Compensation{Rate: money("80000"), RateType: employee.RateTypeMonthly}, schedule.Adjustments{MonthlyWorkingDays: &twenty}, "500"},
		{"custom rate override", employee.Compensation{Rate: money("500"), RateType: employee.RateTypeHourly}, schedule.Adjustments{CustomRate: &custom}, "600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HourlyRate(tt.comp, tt.adj, rates)
			require.NoError(t, err)
			assertMoney(t, tt.want, got)
		})
	}
}

func TestHourlyRate_Errors(t *testing.T) {
	rates := DefaultRates()

	_, err := HourlyRate(employee.Compensation{EmployeeID: "e1", Rate: decimal.Zero, RateType: employee.RateTypeHourly}, schedule.Adjustments{}, rates)
	require.Error(t, err)
	assert.True(t, errors.Is(err, payroll.ErrInvalidRate))
	var calcErr *payroll.CalculationError
	require.True(t, errors.As(err, &calcErr))
	assert.Equal(t, "rate", calcErr.Field)
	assert.Equal(t, "e1", calcErr.EmployeeID)

	_, err = HourlyRate(employee.Compensation{Rate: money("500"), RateType: employee.RateType("weekly")}, schedule.Adjustments{}, rates)
	assert.ErrorIs(t, err, payroll.ErrUnsupportedRateType)
}

func TestCalculateEarnings_PropagatesRateError(t *testing.T) {
	b := shift(at(11, 8, 0), at(11, 17, 0), lunchSchedule(), dayOpts{})
	_, err := CalculateEarnings(employee.Compensation{Rate: money("-1"), RateType: employee.RateTypeHourly}, schedule.Adjustments{}, b, DefaultRates())
	assert.ErrorIs(t, err, payroll.ErrInvalidRate)
}

func TestHolidayNotWorkedAndLeavePay(t *testing.T) {
	rates := DefaultRates()
	daily := DailyRate(fiveHundred, schedule.Resolution{}, rates)
	assertMoney(t, "4000", daily)

	hol := HolidayNotWorkedPay(daily, rates)
	assertMoney(t, "4000", hol.HolidayPay)
	assertMoney(t, "4000", hol.GrossPay)

	leave := LeavePay(money("1.5"), daily)
	assertMoney(t, "6000", leave.LeavePay)
	assertMoney(t, "6000", leave.GrossPay)
}
