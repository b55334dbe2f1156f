package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	schedulesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(day int, in, out *time.Time) attendance.Attendance {
	return attendance.Attendance{
		ID:         "att",
		EmployeeID: "emp-1",
		Date:       time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		TimeIn:     in,
		TimeOut:    out,
	}
}

func ptr(t time.Time) *time.Time { return &t }

func contract(rate decimal.Decimal, empType employee.EmploymentType, from time.Time, until *time.Time) employee.Compensation {
	return employee.Compensation{
		EmployeeID:     "emp-1",
		Rate:           rate,
		RateType:       employee.RateTypeHourly,
		EmploymentType: empType,
		EffectiveDate:  from,
		EndDate:        until,
	}
}

func independenceDay() holiday.Holiday {
	return holiday.Holiday{ID: "h1", Date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), Name: "Independence Day", Type: holiday.TypeRegular, IsActive: true}
}

// Records fall in the week of June 9-13 2025, Monday to Friday, with a regular
// holiday on Thursday. The period is the whole of June.
func weekInput(t *testing.T, empType employee.EmploymentType, holidays ...holiday.Holiday) PayslipInput {
	t.Helper()
	sched := lunchSchedule()
	return PayslipInput{
		Employee: employee.Employee{
			ID: "emp-1", CompanyID: "c1", EmployeeCode: "EMP-001", FullName: "Juan Dela Cruz",
			EmploymentType: empType,
		},
		Contracts: []employee.Compensation{
			contract(fiveHundred, empType, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil),
		},
		Calendar: schedulesvc.NewCalendar(&sched, nil, holidays),
		Records: []attendance.Attendance{
			record(10, ptr(at(10, 8, 0)), ptr(at(10, 19, 0))),
			record(9, ptr(at(9, 8, 0)), ptr(at(9, 17, 0))),
			record(11, ptr(at(11, 8, 0)), nil),
		},
		PeriodStart: time.Date(2025, 6, 1, 0, 0, 0, 0, manila),
		PeriodEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, manila),
		Rates:       DefaultRates(),
		Location:    manila,
	}
}

func warningCodes(ws []payroll.RunWarning) []payroll.WarningCode {
	codes := make([]payroll.WarningCode, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

func TestComputePayslip_FullWeek(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular, independenceDay())
	in.PaidLeaveDays = decimal.NewFromInt(1)
	in.Bonuses = map[string]decimal.Decimal{"performance": money("1000")}
	in.Deductions = map[string]decimal.Decimal{"loan": money("500")}

	res, err := ComputePayslip(in)
	require.NoError(t, err)
	slip := res.Payslip

	assert.Equal(t, "EMP-001", slip.EmployeeCode)
	assert.Equal(t, 2, slip.DaysWorked)
	assert.Equal(t, 18.0, slip.TotalHours)
	assert.Equal(t, 2.0, slip.OvertimeHours)
	assert.Equal(t, 16.0, slip.HoursByBucket["regular"])
	assert.Equal(t, 2.0, slip.HoursByBucket["regular_overtime"])
	assertMoney(t, "500", slip.HourlyRate)

	assertMoney(t, "8000", slip.Earnings.BasePay)
	assertMoney(t, "1250", slip.Earnings.OvertimePay)
	assertMoney(t, "4000", slip.Earnings.HolidayPay)
	assertMoney(t, "4000", slip.Earnings.LeavePay)
	assertMoney(t, "17250", slip.Earnings.GrossPay)

	// 17,250 falls in the 17,500 credit bracket.
	assertMoney(t, "875", slip.Deductions.SocialInsuranceEmployee)
	assertMoney(t, "474.38", slip.Deductions.HealthInsuranceEmployee)
	assertMoney(t, "200", slip.Deductions.HousingFundEmployee)
	assertMoney(t, "0", slip.Deductions.IncomeTax)
	assertMoney(t, "2049.38", slip.Deductions.TotalDeductions)

	assertMoney(t, "1000", slip.TotalBonuses)
	assertMoney(t, "16199.62", slip.NetPay)

	assert.Equal(t, []payroll.WarningCode{payroll.WarningOpenAttendance}, warningCodes(res.Warnings))
	assert.Equal(t, "emp-1", res.Warnings[0].EmployeeID)
}

func TestComputePayslip_NetPayIdentity(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular, independenceDay())
	in.Bonuses = map[string]decimal.Decimal{"a": money("12.345"), "b": money("0.004")}
	in.Deductions = map[string]decimal.Decimal{"x": money("33.333")}
	in.Rates.LatePenaltyRate = money("1")
	in.Records[0].TimeIn = ptr(at(10, 8, 7))

	res, err := ComputePayslip(in)
	require.NoError(t, err)
	slip := res.Payslip

	want := slip.Earnings.GrossPay.Add(slip.TotalBonuses).Sub(slip.Deductions.TotalDeductions)
	assert.True(t, want.Equal(slip.NetPay))
	assert.Equal(t, 7, slip.LateMinutes)
	assertMoney(t, "58.33", slip.Deductions.LatePenalty)
	assertMoney(t, "12.35", slip.TotalBonuses)
}

func TestComputePayslip_HolidayNotWorkedNeedsEntitlement(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeContractual, independenceDay())

	res, err := ComputePayslip(in)
	require.NoError(t, err)
	assertMoney(t, "0", res.Payslip.Earnings.HolidayPay)
	assertMoney(t, "9250", res.Payslip.Earnings.GrossPay)
}

func TestComputePayslip_WorkedHolidayIsPremiumNotHolidayPay(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular, independenceDay())
	in.Records = append(in.Records, record(12, ptr(at(12, 8, 0)), ptr(at(12, 17, 0))))

	res, err := ComputePayslip(in)
	require.NoError(t, err)

	// 8 x 500 x 2.0, no separate unworked-holiday pay.
	assertMoney(t, "8000", res.Payslip.Earnings.HolidayPay)
	assert.Equal(t, 8.0, res.Payslip.HoursByBucket["regular_holiday"])
}

func TestComputePayslip_AmbiguousHolidayWarnsOnce(t *testing.T) {
	dup := independenceDay()
	dup.ID = "h2"
	dup.Name = "Duplicate"
	dup.Type = holiday.TypeSpecial

	in := weekInput(t, employee.EmploymentTypeRegular, independenceDay(), dup)
	in.Records = append(in.Records, record(12, ptr(at(12, 8, 0)), ptr(at(12, 17, 0))))

	res, err := ComputePayslip(in)
	require.NoError(t, err)

	var ambiguous int
	for _, w := range res.Warnings {
		if w.Code == payroll.WarningAmbiguousHoliday {
			ambiguous++
			assert.Contains(t, w.Message, "Independence Day")
		}
	}
	assert.Equal(t, 1, ambiguous)
	assert.Equal(t, 8.0, res.Payslip.HoursByBucket["regular_holiday"])
}

func TestComputePayslip_NoScheduleWarning(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular)
	in.Calendar = schedulesvc.NewCalendar(nil, nil, nil)

	res, err := ComputePayslip(in)
	require.NoError(t, err)
	assert.Contains(t, warningCodes(res.Warnings), payroll.WarningNoSchedule)
}

func TestComputePayslip_InvalidRate(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular)
	in.Contracts[0].Rate = decimal.Zero

	_, err := ComputePayslip(in)
	assert.ErrorIs(t, err, payroll.ErrInvalidRate)
}

func TestComputePayslip_CustomRateOverride(t *testing.T) {
	sched := lunchSchedule()
	in := weekInput(t, employee.EmploymentTypeRegular)
	in.Calendar = schedulesvc.NewCalendar(&sched, []schedule.Override{{
		Type:          schedule.OverrideCustomRate,
		Value:         money("600"),
		EffectiveFrom: time.Date(2025, 6, 10, 0, 0, 0, 0, manila),
	}}, nil)

	res, err := ComputePayslip(in)
	require.NoError(t, err)

	// Monday at 500, Tuesday (8 + 2 overtime) at 600.
	assertMoney(t, "8800", res.Payslip.Earnings.BasePay)
	assertMoney(t, "1500", res.Payslip.Earnings.OvertimePay)
	assertMoney(t, "600", res.Payslip.HourlyRate)
}

func TestComputePayslip_Deterministic(t *testing.T) {
	first, err := ComputePayslip(weekInput(t, employee.EmploymentTypeRegular, independenceDay()))
	require.NoError(t, err)
	second, err := ComputePayslip(weekInput(t, employee.EmploymentTypeRegular, independenceDay()))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputePayslip_RaiseAppliesFromEffectiveDate(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular)
	in.Contracts = []employee.Compensation{
		contract(money("600"), employee.EmploymentTypeRegular, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), nil),
		contract(fiveHundred, employee.EmploymentTypeRegular, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil),
	}

	res, err := ComputePayslip(in)
	require.NoError(t, err)

	// Monday at 500, Tuesday (8 + 2 overtime) at 600.
	assertMoney(t, "8800", res.Payslip.Earnings.BasePay)
	assertMoney(t, "1500", res.Payslip.Earnings.OvertimePay)
	assertMoney(t, "600", res.Payslip.HourlyRate)
}

func TestComputePayslip_ContractEndedMidPeriod(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular, independenceDay())
	in.Contracts = []employee.Compensation{
		contract(fiveHundred, employee.EmploymentTypeRegular, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ptr(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))),
	}

	res, err := ComputePayslip(in)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Payslip.DaysWorked)
	assertMoney(t, "8000", res.Payslip.Earnings.BasePay)
	assertMoney(t, "1250", res.Payslip.Earnings.OvertimePay)
	// The holiday on the 12th falls after the contract ended.
	assertMoney(t, "0", res.Payslip.Earnings.HolidayPay)
	assertMoney(t, "500", res.Payslip.HourlyRate)
}

func TestComputePayslip_WorkedDayWithoutContract(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular)
	in.Contracts = []employee.Compensation{
		contract(fiveHundred, employee.EmploymentTypeRegular, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), nil),
	}

	_, err := ComputePayslip(in)
	var calcErr *payroll.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, "contract", calcErr.Field)
	assert.ErrorIs(t, err, employee.ErrCompensationNotFound)
	assert.Contains(t, err.Error(), "2025-06-09")
}

func TestComputePayslip_NoContract(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular)
	in.Contracts = nil

	_, err := ComputePayslip(in)
	assert.ErrorIs(t, err, employee.ErrCompensationNotFound)
}

func TestComputePayslip_PartialPeriodScalesStatutory(t *testing.T) {
	in := weekInput(t, employee.EmploymentTypeRegular)
	in.PeriodStart = time.Date(2025, 6, 9, 0, 0, 0, 0, manila)
	in.PeriodEnd = time.Date(2025, 6, 9, 0, 0, 0, 0, manila)
	in.Records = in.Records[1:2]

	res, err := ComputePayslip(in)
	require.NoError(t, err)
	d := res.Payslip.Deductions

	// One day of June: 4,000 gross is 120,000 a month, so each monthly
	// contribution is charged at 1/30.
	assertMoney(t, "4000", res.Payslip.Earnings.GrossPay)
	assertMoney(t, "58.33", d.SocialInsuranceEmployee)
	assertMoney(t, "91.67", d.HealthInsuranceEmployee)
	assertMoney(t, "6.67", d.HousingFundEmployee)
	assertMoney(t, "3843.33", d.TaxableIncome)
	assertMoney(t, "690", d.IncomeTax)
}
