package payroll

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
)

// StandardHours is the regular-pool size for a day: the hours_per_day
// override when present, otherwise the configured standard day.
func StandardHours(res schedule.Resolution, rates payroll.Rates) float64 {
	if res.Adjustments.HoursPerDay != nil && *res.Adjustments.HoursPerDay > 0 {
		return *res.Adjustments.HoursPerDay
	}
	return rates.StandardDailyHours
}

// DayKey is the premium key of the day itself, before the per-hour axes.
func DayKey(res schedule.Resolution) payroll.PremiumKey {
	key := payroll.PremiumKey{RestDay: res.IsRestDay}
	switch {
	case res.IsRegularHoliday():
		key.Holiday = payroll.HolidayRegular
	case res.IsSpecialHoliday():
		key.Holiday = payroll.HolidaySpecial
	}
	return key
}

// Classify partitions the worked hours of one shift into premium buckets.
//
// The first standardHours of work, in clock order, form the regular pool and
// the rest is overtime. A deducted break is taken from inside the regular
// pool, so overtime starts at clock-in + regular hours + break. Night hours
// are split between the pools by their overlap with the overtime window; the
// pool totals are never changed by the split.
func Classify(in payroll.ShiftInput, standardHours float64) payroll.Breakdown {
	seg := in.Segment
	day := DayKey(in.Resolution)

	total := seg.TotalHours
	if total < 0 {
		total = 0
	}
	regular := total
	if standardHours > 0 && regular > standardHours {
		regular = standardHours
	}
	overtime := total - regular

	nightTotal := math.Min(seg.NightDifferentialHours, total)
	var nightOvertime float64
	if overtime > 0 && nightTotal > 0 {
		otStart := in.TimeIn.Add(hoursDuration(regular + seg.BreakHours))
		nightOvertime = attendancesvc.RoundHours(attendancesvc.NightHours(otStart, in.TimeOut))
		nightOvertime = math.Min(nightOvertime, math.Min(overtime, nightTotal))
	}
	nightRegular := math.Min(nightTotal-nightOvertime, regular)

	var leaves []payroll.Leaf
	add := func(key payroll.PremiumKey, hours float64) {
		if hours <= 0 {
			return
		}
		leaves = append(leaves, payroll.Leaf{Bucket: key.Name(), Key: key, Hours: hours})
	}

	withNight := func(k payroll.PremiumKey) payroll.PremiumKey { k.NightDiff = true; return k }
	withOvertime := func(k payroll.PremiumKey) payroll.PremiumKey { k.Overtime = true; return k }

	add(day, regular-nightRegular)
	add(withNight(day), nightRegular)
	add(withOvertime(day), overtime-nightOvertime)
	add(withNight(withOvertime(day)), nightOvertime)

	return Summarize(day, leaves)
}

// Summarize derives the summary views of a breakdown from its leaves.
func Summarize(day payroll.PremiumKey, leaves []payroll.Leaf) payroll.Breakdown {
	b := payroll.Breakdown{
		Overtime: map[string]float64{"total": 0},
		Premiums: payroll.Premiums{Holidays: make(map[string]payroll.HolidaySplit)},
		Leaves:   leaves,
	}
	if b.Leaves == nil {
		b.Leaves = []payroll.Leaf{}
	}

	for _, l := range leaves {
		k := l.Key
		b.TotalHours += l.Hours

		if k.Overtime {
			b.Overtime["total"] += l.Hours
			b.Overtime[l.Bucket] += l.Hours
		} else {
			b.RegularHours += l.Hours
		}

		if k.NightDiff {
			b.Premiums.NightDifferential.Total += l.Hours
			if k.Overtime {
				b.Premiums.NightDifferential.Overtime += l.Hours
			} else {
				b.Premiums.NightDifferential.Regular += l.Hours
			}
		}

		if k.RestDay {
			b.Premiums.RestDay.Total += l.Hours
			if k.Holiday == payroll.HolidayNone {
				b.Premiums.RestDay.PureRestDay += l.Hours
			}
		}

		if k.Holiday != payroll.HolidayNone {
			name := k.DayKey().Name()
			split := b.Premiums.Holidays[name]
			split.Total += l.Hours
			if k.Overtime {
				split.Overtime += l.Hours
			} else {
				split.Regular += l.Hours
			}
			b.Premiums.Holidays[name] = split
		}
	}

	hasOvertime := b.Overtime["total"] > 0
	hasNight := b.Premiums.NightDifferential.Total > 0
	flags := payroll.EdgeCaseFlags{
		IsRestDay:            day.RestDay,
		IsRegularHoliday:     day.Holiday == payroll.HolidayRegular,
		IsSpecialHoliday:     day.Holiday == payroll.HolidaySpecial,
		HasOvertime:          hasOvertime,
		HasNightDifferential: hasNight,
	}
	flags.PremiumStackCount = payroll.PremiumKey{
		RestDay:   day.RestDay,
		Holiday:   day.Holiday,
		Overtime:  hasOvertime,
		NightDiff: hasNight,
	}.StackCount()
	flags.IsUltimateCaseRegular = flags.PremiumStackCount == 4 && flags.IsRegularHoliday
	flags.IsUltimateCaseSpecial = flags.PremiumStackCount == 4 && flags.IsSpecialHoliday
	b.EdgeCaseFlags = flags

	return b
}

func hoursDuration(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}
