package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

const (
	nightStartHour = 22
	nightEndHour   = 6

	// A break is only deducted from shifts at least this long.
	minHoursForBreak = 4.0
	undertimeGrace   = 0.5
)

// ComputeSegment measures one shift against its schedule. Schedule times are
// placed on the clock-in's calendar day, in the clock-in's location. Negative
// elapsed time clamps to zero.
func ComputeSegment(timeIn, timeOut time.Time, sched schedule.Schedule) attendance.Segment {
	timeOut = timeOut.In(timeIn.Location())

	elapsed := timeOut.Sub(timeIn).Hours()
	if elapsed < 0 {
		elapsed = 0
	}

	var breakHours float64
	if sched.HasBreak() && elapsed >= minHoursForBreak {
		breakHours = float64(sched.BreakMinutes()) / 60
	}
	total := elapsed - breakHours
	if total < 0 {
		total = 0
	}

	start, end := sched.Bounds(timeIn)
	scheduled := sched.WorkHours()

	seg := attendance.Segment{
		TotalHours:             total,
		ElapsedHours:           elapsed,
		BreakHours:             breakHours,
		LateMinutes:            wholeMinutes(timeIn.Sub(start)),
		UndertimeMinutes:       wholeMinutes(end.Sub(timeOut)),
		NightDifferentialHours: RoundHours(NightHours(timeIn, timeOut)),
		ScheduledHours:         scheduled,
		IsUndertime:            total < scheduled-undertimeGrace,
		IsHalfday:              total < scheduled/2,
	}
	return seg
}

// NightHours walks [from, to) in hour-aligned steps and sums the time that
// falls between 22:00 and 06:00 local time. The result is not rounded.
func NightHours(from, to time.Time) float64 {
	if !to.After(from) {
		return 0
	}

	var minutes float64
	cursor := from
	for cursor.Before(to) {
		next := nextHour(cursor)
		if next.After(to) {
			next = to
		}
		if isNightHour(cursor.Hour()) {
			minutes += next.Sub(cursor).Minutes()
		}
		cursor = next
	}
	return minutes / 60
}

// RoundHours rounds half away from zero at two decimals.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func isNightHour(h int) bool {
	return h >= nightStartHour || h < nightEndHour
}

func nextHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour()+1, 0, 0, 0, t.Location())
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Minutes()))
}
