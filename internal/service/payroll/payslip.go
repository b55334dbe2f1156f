package payroll

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// PayslipInput is everything needed to compute one employee's payslip. It is
// fetched up front so ComputePayslip does no I/O. Contracts holds every
// contract overlapping the period, oldest effective date first.
type PayslipInput struct {
	Employee      employee.Employee
	Contracts     []employee.Compensation
	Calendar      schedule.DayResolver
	Records       []attendance.Attendance
	Bonuses       map[string]decimal.Decimal
	Deductions    map[string]decimal.Decimal
	PaidLeaveDays decimal.Decimal
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Rates         payroll.Rates
	Location      *time.Location
}

type PayslipResult struct {
	Payslip  payroll.Payslip
	Warnings []payroll.RunWarning
}

// ComputePayslip runs segment, classification, earnings and deductions over
// every finalized record of the period and sums them into a payslip. Each day
// is priced on the contract in force that day.
func ComputePayslip(in PayslipInput) (PayslipResult, error) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	empID := in.Employee.ID

	contracts := append([]employee.Compensation(nil), in.Contracts...)
	sort.SliceStable(contracts, func(i, j int) bool { return contracts[i].EffectiveDate.Before(contracts[j].EffectiveDate) })
	if len(contracts) == 0 {
		return PayslipResult{}, &payroll.CalculationError{EmployeeID: empID, Field: "contract", Err: employee.ErrCompensationNotFound}
	}

	periodStart := attendancesvc.LocalDate(in.PeriodStart, loc)
	periodEnd := attendancesvc.LocalDate(in.PeriodEnd, loc)

	// The latest contract sets the payslip's hourly rate and leave pay.
	latest := contracts[len(contracts)-1]
	refDate := periodEnd
	if latest.EndDate != nil {
		if ended := attendancesvc.LocalDate(*latest.EndDate, loc); ended.Before(refDate) {
			refDate = ended
		}
	}
	endRes := in.Calendar.Resolve(refDate, false)
	hourlyAtEnd, err := HourlyRate(latest, endRes.Adjustments, in.Rates)
	if err != nil {
		return PayslipResult{}, err
	}

	employmentTypeOf := func(c employee.Compensation) employee.EmploymentType {
		if c.EmploymentType != "" {
			return c.EmploymentType
		}
		return in.Employee.EmploymentType
	}

	var (
		result    PayslipResult
		earnings  payroll.EarningsResult
		late      decimal.Decimal
		undertime decimal.Decimal
		buckets   = make(map[string]float64)
		worked    = make(map[string]bool)
		flagged   = make(map[string]bool)
	)
	slip := payroll.Payslip{
		CompanyID:    in.Employee.CompanyID,
		EmployeeID:   empID,
		EmployeeCode: in.Employee.EmployeeCode,
		EmployeeName: in.Employee.FullName,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		RateType:     string(latest.RateType),
		HourlyRate:   payroll.RoundMoney(hourlyAtEnd),
	}

	warn := func(code payroll.WarningCode, key, msg string) {
		if flagged[string(code)+key] {
			return
		}
		flagged[string(code)+key] = true
		result.Warnings = append(result.Warnings, payroll.RunWarning{Code: code, EmployeeID: empID, Message: msg})
	}

	records := append([]attendance.Attendance(nil), in.Records...)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	for _, rec := range records {
		date := attendancesvc.LocalDate(rec.Date, loc)
		dateKey := holiday.DateKey(date)
		if rec.TimeIn != nil {
			worked[dateKey] = true
		}
		if !rec.IsFinalized() {
			if rec.IsOpen() {
				warn(payroll.WarningOpenAttendance, dateKey, fmt.Sprintf("attendance on %s has no clock-out and was skipped", dateKey))
			}
			continue
		}

		comp, ok := employee.ContractOn(contracts, date)
		if !ok {
			return PayslipResult{}, &payroll.CalculationError{
				EmployeeID: empID,
				Field:      "contract",
				Err:        fmt.Errorf("%w on %s", employee.ErrCompensationNotFound, dateKey),
			}
		}

		res := in.Calendar.Resolve(date, rec.IsDayOff)
		checkResolution(res, dateKey, warn)

		timeIn := rec.TimeIn.In(loc)
		timeOut := rec.TimeOut.In(loc)
		seg := attendancesvc.ComputeSegment(timeIn, timeOut, res.Schedule)
		bd := Classify(payroll.ShiftInput{TimeIn: timeIn, TimeOut: timeOut, Segment: seg, Resolution: res}, StandardHours(res, in.Rates))

		hourly, err := HourlyRate(comp, res.Adjustments, in.Rates)
		if err != nil {
			return PayslipResult{}, err
		}
		earnings = earnings.Add(PriceBreakdown(hourly, bd, in.Rates))

		if seg.TotalHours > 0 {
			slip.DaysWorked++
		}
		slip.TotalHours += seg.TotalHours
		slip.OvertimeHours += bd.OvertimeHours()
		slip.NightDiffHours += bd.Premiums.NightDifferential.Total
		slip.LateMinutes += seg.LateMinutes
		slip.UndertimeMinutes += seg.UndertimeMinutes
		for _, l := range bd.Leaves {
			buckets[l.Bucket] += l.Hours
		}

		late = late.Add(minutesCost(seg.LateMinutes, hourly, in.Rates.LatePenaltyRate))
		undertime = undertime.Add(minutesCost(seg.UndertimeMinutes, hourly, in.Rates.UndertimePenaltyRate))
	}

	for d := periodStart; !d.After(periodEnd); d = d.AddDate(0, 0, 1) {
		dateKey := holiday.DateKey(d)
		if worked[dateKey] {
			continue
		}
		comp, ok := employee.ContractOn(contracts, d)
		if !ok || !employmentTypeOf(comp).EntitledToHolidayPay() {
			continue
		}
		res := in.Calendar.Resolve(d, false)
		if !res.IsRegularHoliday() || res.IsRestDay {
			continue
		}
		checkResolution(res, dateKey, warn)
		hourly, err := HourlyRate(comp, res.Adjustments, in.Rates)
		if err != nil {
			return PayslipResult{}, err
		}
		earnings = earnings.Add(HolidayNotWorkedPay(DailyRate(hourly, res, in.Rates), in.Rates))
	}

	if in.PaidLeaveDays.IsPositive() {
		earnings = earnings.Add(LeavePay(in.PaidLeaveDays, DailyRate(hourlyAtEnd, endRes, in.Rates)))
	}

	slip.Earnings = earnings.Rounded()
	slip.Deductions = CalculateDeductions(DeductionInput{
		GrossPay:         slip.Earnings.GrossPay,
		Period:           NewPeriodShare(periodStart, periodEnd),
		Individual:       in.Deductions,
		LatePenalty:      late,
		UndertimePenalty: undertime,
	}, in.Rates)

	slip.Bonuses = make(map[string]decimal.Decimal, len(in.Bonuses))
	for name, amount := range in.Bonuses {
		amount = payroll.RoundMoney(amount)
		slip.Bonuses[name] = amount
		slip.TotalBonuses = slip.TotalBonuses.Add(amount)
	}

	slip.NetPay = slip.Earnings.GrossPay.Add(slip.TotalBonuses).Sub(slip.Deductions.TotalDeductions)

	slip.TotalHours = attendancesvc.RoundHours(slip.TotalHours)
	slip.OvertimeHours = attendancesvc.RoundHours(slip.OvertimeHours)
	slip.NightDiffHours = attendancesvc.RoundHours(slip.NightDiffHours)
	slip.HoursByBucket = make(map[string]float64, len(buckets))
	for name, h := range buckets {
		slip.HoursByBucket[name] = attendancesvc.RoundHours(h)
	}

	if !endRes.HasSchedule {
		warn(payroll.WarningNoSchedule, "", "no schedule on file, default 08:00-16:00 Monday-Friday schedule used")
	}

	result.Payslip = slip
	return result, nil
}

func checkResolution(res schedule.Resolution, dateKey string, warn func(payroll.WarningCode, string, string)) {
	if len(res.Conflicts) == 0 {
		return
	}
	names := make([]string, 0, len(res.Conflicts))
	for _, h := range res.Conflicts {
		names = append(names, h.Name)
	}
	warn(payroll.WarningAmbiguousHoliday, dateKey, fmt.Sprintf("%s has %d active holidays, used %q and ignored %s",
		dateKey, len(res.Conflicts)+1, res.Holiday.Name, strings.Join(names, ", ")))
}

func minutesCost(minutes int, hourly, rate decimal.Decimal) decimal.Decimal {
	if minutes <= 0 || rate.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Mul(hourly).Mul(rate)
}
