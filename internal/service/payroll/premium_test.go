package payroll

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPremiumKey_Name(t *testing.T) {
	cases := []struct {
		key  payroll.PremiumKey
		want string
	}{
		{payroll.PremiumKey{}, "regular"},
		{payroll.PremiumKey{Overtime: true}, "regular_overtime"},
		{payroll.PremiumKey{NightDiff: true, Overtime: true}, "night_diff_overtime"},
		{payroll.PremiumKey{RestDay: true, Overtime: true}, "rest_day_overtime"},
		{payroll.PremiumKey{RestDay: true, Holiday: payroll.HolidayRegular}, "regular_holiday_rest_day"},
		{payroll.PremiumKey{Holiday: payroll.HolidaySpecial}, "special_holiday"},
		{payroll.PremiumKey{RestDay: true, Holiday: payroll.HolidayRegular, Overtime: true}, "regular_holiday_rest_day_overtime"},
		{payroll.PremiumKey{RestDay: true, Holiday: payroll.HolidayRegular, Overtime: true, NightDiff: true}, "night_diff_regular_holiday_rest_day_overtime"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.key.Name())
	}
}

func TestAllPremiumKeys_UniqueNames(t *testing.T) {
	keys := payroll.AllPremiumKeys()
	require.Len(t, keys, 24)

	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k.Name()], "duplicate bucket %s", k.Name())
		seen[k.Name()] = true
	}
}

func TestClassify_RegularDay(t *testing.T) {
	b := shift(at(11, 8, 0), at(11, 17, 0), lunchSchedule(), dayOpts{})

	assert.Equal(t, 8.0, b.TotalHours)
	assert.Equal(t, 8.0, b.RegularHours)
	assert.Equal(t, 8.0, b.Hours(payroll.PremiumKey{}))
	assert.Equal(t, 0.0, b.OvertimeHours())
	assert.Equal(t, 0, b.EdgeCaseFlags.PremiumStackCount)
	assert.Len(t, b.Leaves, 1)
}

func TestClassify_RegularDayOvertime(t *testing.T) {
	b := shift(at(11, 8, 0), at(11, 19, 0), lunchSchedule(), dayOpts{})

	assert.Equal(t, 10.0, b.TotalHours)
	assert.Equal(t, 8.0, b.RegularHours)
	assert.Equal(t, 2.0, b.Overtime["regular_overtime"])
	assert.Equal(t, 2.0, b.Overtime["total"])
	assert.True(t, b.EdgeCaseFlags.HasOvertime)
	assert.Equal(t, 1, b.EdgeCaseFlags.PremiumStackCount)
}

func TestClassify_RestDay(t *testing.T) {
	b := shift(at(14, 8, 0), at(14, 17, 0), lunchSchedule(), dayOpts{restDay: true})

	assert.Equal(t, 8.0, b.Hours(payroll.PremiumKey{RestDay: true}))
	assert.Equal(t, 8.0, b.Premiums.RestDay.Total)
	assert.Equal(t, 8.0, b.Premiums.RestDay.PureRestDay)
	assert.Empty(t, b.Premiums.Holidays)
}

func TestClassify_RestDayRegularHoliday(t *testing.T) {
	b := shift(at(14, 8, 0), at(14, 17, 0), lunchSchedule(), dayOpts{restDay: true, holiday: holiday.TypeRegular})

	key := payroll.PremiumKey{RestDay: true, Holiday: payroll.HolidayRegular}
	assert.Equal(t, 8.0, b.Hours(key))
	split := b.Premiums.Holidays["regular_holiday_rest_day"]
	assert.Equal(t, 8.0, split.Total)
	assert.Equal(t, 8.0, split.Regular)
	assert.Equal(t, 0.0, b.Premiums.RestDay.PureRestDay)
	assert.Equal(t, 8.0, b.Premiums.RestDay.Total)
	assert.Equal(t, 2, b.EdgeCaseFlags.PremiumStackCount)
}

func TestClassify_UltimateCase(t *testing.T) {
	// 14:00 to 02:00 with no break: 8 regular hours end at 22:00, the four
	// overtime hours all fall in the night window.
	sched := noBreakSchedule()
	b := shift(at(14, 14, 0), at(15, 2, 0), sched, dayOpts{restDay: true, holiday: holiday.TypeRegular})

	assert.Equal(t, 12.0, b.TotalHours)
	assert.Equal(t, 8.0, b.Hours(payroll.PremiumKey{RestDay: true, Holiday: payroll.HolidayRegular}))
	assert.Equal(t, 4.0, b.Hours(payroll.PremiumKey{RestDay: true, Holiday: payroll.HolidayRegular, Overtime: true, NightDiff: true}))
	assert.Equal(t, 4.0, b.Overtime["night_diff_regular_holiday_rest_day_overtime"])
	assert.Equal(t, 4.0, b.Premiums.NightDifferential.Total)
	assert.Equal(t, 4.0, b.Premiums.NightDifferential.Overtime)
	assert.Equal(t, 0.0, b.Premiums.NightDifferential.Regular)

	split := b.Premiums.Holidays["regular_holiday_rest_day"]
	assert.Equal(t, 12.0, split.Total)
	assert.Equal(t, 4.0, split.Overtime)

	assert.Equal(t, 4, b.EdgeCaseFlags.PremiumStackCount)
	assert.True(t, b.EdgeCaseFlags.IsUltimateCaseRegular)
	assert.False(t, b.EdgeCaseFlags.IsUltimateCaseSpecial)
}

func TestClassify_NightSplitAcrossPools(t *testing.T) {
	// 18:00 to 06:00 with a one hour break: regular pool 18:00-03:00
	// (break inside), overtime 03:00-06:00. Eight night hours in total.
	sched := lunchSchedule()
	b := shift(at(11, 18, 0), at(12, 6, 0), sched, dayOpts{})

	assert.Equal(t, 11.0, b.TotalHours)
	assert.Equal(t, 3.0, b.Premiums.NightDifferential.Overtime)
	assert.Equal(t, 5.0, b.Premiums.NightDifferential.Regular)
	assert.Equal(t, 3.0, b.Hours(payroll.PremiumKey{}))
	assert.Equal(t, 5.0, b.Hours(payroll.PremiumKey{NightDiff: true}))
	assert.Equal(t, 0.0, b.Hours(payroll.PremiumKey{Overtime: true}))
	assert.Equal(t, 3.0, b.Hours(payroll.PremiumKey{NightDiff: true, Overtime: true}))
}

func TestClassify_ZeroHours(t *testing.T) {
	b := shift(at(11, 17, 0), at(11, 8, 0), lunchSchedule(), dayOpts{restDay: true})

	assert.Equal(t, 0.0, b.TotalHours)
	assert.Empty(t, b.Leaves)
	assert.NotNil(t, b.Overtime)
	assert.True(t, b.EdgeCaseFlags.IsRestDay)
}

func TestClassify_PartitionInvariant(t *testing.T) {
	days := []dayOpts{
		{},
		{restDay: true},
		{holiday: holiday.TypeRegular},
		{holiday: holiday.TypeSpecial},
		{restDay: true, holiday: holiday.TypeRegular},
		{restDay: true, holiday: holiday.TypeSpecial},
	}
	shifts := [][2][3]int{
		{{11, 8, 0}, {11, 17, 0}},
		{{11, 7, 13}, {11, 21, 47}},
		{{11, 16, 30}, {12, 4, 10}},
		{{11, 21, 0}, {12, 9, 59}},
		{{11, 0, 5}, {11, 3, 5}},
		{{11, 13, 0}, {12, 13, 0}},
	}

	for _, o := range days {
		for _, s := range shifts {
			in := at(s[0][0], s[0][1], s[0][2])
			out := at(s[1][0], s[1][1], s[1][2])
			for _, sched := range []schedule.Schedule{lunchSchedule(), noBreakSchedule()} {
				seg := attendancesvc.ComputeSegment(in, out, sched)
				b := shift(in, out, sched, o)

				assert.InDelta(t, seg.TotalHours, b.LeafTotal(), 1e-9)
				assert.InDelta(t, b.TotalHours, b.RegularHours+b.OvertimeHours(), 1e-9)
				assert.LessOrEqual(t, b.RegularHours, 8.0+1e-9)
				for _, l := range b.Leaves {
					assert.Greater(t, l.Hours, 0.0)
					assert.Equal(t, l.Key.Name(), l.Bucket)
				}
			}
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	first := shift(at(14, 14, 0), at(15, 2, 0), noBreakSchedule(), dayOpts{restDay: true, holiday: holiday.TypeSpecial})
	second := shift(at(14, 14, 0), at(15, 2, 0), noBreakSchedule(), dayOpts{restDay: true, holiday: holiday.TypeSpecial})
	assert.Equal(t, first, second)
}
