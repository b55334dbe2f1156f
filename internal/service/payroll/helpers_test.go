package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	"github.com/shopspring/decimal"
)

var manila = time.FixedZone("PHT", 8*60*60)

func at(d, h, m int) time.Time {
	return time.Date(2025, 6, d, h, m, 0, 0, manila)
}

func noBreakSchedule() schedule.Schedule {
	return schedule.Schedule{
		ShiftStart: schedule.NewClockTime(8, 0),
		ShiftEnd:   schedule.NewClockTime(16, 0),
		DaysOfWeek: []int{1, 2, 3, 4, 5},
	}
}

func lunchSchedule() schedule.Schedule {
	return schedule.Schedule{
		ShiftStart:    schedule.NewClockTime(8, 0),
		ShiftEnd:      schedule.NewClockTime(17, 0),
		BreakDuration: 60,
		DaysOfWeek:    []int{1, 2, 3, 4, 5},
	}
}

type dayOpts struct {
	restDay bool
	holiday holiday.Type
}

func resolution(date time.Time, sched schedule.Schedule, o dayOpts) schedule.Resolution {
	res := schedule.Resolution{Date: date, Schedule: sched, HasSchedule: true, IsRestDay: o.restDay}
	if o.holiday != "" {
		res.Holiday = &holiday.Holiday{Date: date, Name: "Holiday", Type: o.holiday, IsActive: true}
	}
	return res
}

// shift runs the segment calculator and the classifier like finalization does.
func shift(in, out time.Time, sched schedule.Schedule, o dayOpts) payroll.Breakdown {
	res := resolution(attendancesvc.LocalDate(in, manila), sched, o)
	seg := attendancesvc.ComputeSegment(in, out, sched)
	return Classify(payroll.ShiftInput{TimeIn: in, TimeOut: out, Segment: seg, Resolution: res}, 8)
}

var fiveHundred = decimal.NewFromInt(500)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t assertT, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !money(want).Equal(got) {
		t.Errorf("money mismatch: want %s, got %s %v", want, got.String(), msgAndArgs)
	}
}

type assertT interface {
	Helper()
	Errorf(format string, args ...interface{})
}
