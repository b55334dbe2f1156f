package schedule

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

const defaultDaysPerWeek = 5

// Calendar resolves days for one employee from preloaded data. It never does I/O.
type Calendar struct {
	schedule    schedule.Schedule
	hasSchedule bool
	overrides   []schedule.Override
	holidays    map[string][]holiday.Holiday
}

// NewCalendar builds a calendar. A nil schedule selects the default schedule.
// Holidays are expected in repository order; the first active one on a date wins.
func NewCalendar(sched *schedule.Schedule, overrides []schedule.Override, holidays []holiday.Holiday) *Calendar {
	c := &Calendar{
		schedule:  schedule.DefaultSchedule(),
		overrides: overrides,
		holidays:  make(map[string][]holiday.Holiday),
	}
	if sched != nil {
		c.schedule = *sched
		c.hasSchedule = true
	}
	for _, h := range holidays {
		if !h.IsActive {
			continue
		}
		key := holiday.DateKey(h.Date)
		c.holidays[key] = append(c.holidays[key], h)
	}
	return c
}

// Resolve implements schedule.DayResolver.
func (c *Calendar) Resolve(date time.Time, isDayOff bool) schedule.Resolution {
	adj := c.adjustments(date)

	sched := c.schedule
	if len(sched.DaysOfWeek) == 0 {
		n := defaultDaysPerWeek
		if adj.DaysPerWeek != nil {
			n = *adj.DaysPerWeek
		}
		sched.DaysOfWeek = make([]int, 0, n)
		for d := 1; d <= n && d <= 7; d++ {
			sched.DaysOfWeek = append(sched.DaysOfWeek, d)
		}
	}

	res := schedule.Resolution{
		Date:        date,
		Schedule:    sched,
		HasSchedule: c.hasSchedule,
		IsRestDay:   isDayOff || !sched.WorksOn(schedule.ISOWeekday(date)),
		Adjustments: adj,
	}

	if list := c.holidays[holiday.DateKey(date)]; len(list) > 0 {
		h := list[0]
		res.Holiday = &h
		if len(list) > 1 {
			res.Conflicts = append([]holiday.Holiday(nil), list[1:]...)
		}
	}

	return res
}

// adjustments picks, per override type, the active override that started last.
func (c *Calendar) adjustments(date time.Time) schedule.Adjustments {
	var adj schedule.Adjustments
	latest := make(map[schedule.OverrideType]schedule.Override)
	for _, o := range c.overrides {
		if !o.ActiveOn(date) || !o.Value.IsPositive() {
			continue
		}
		if cur, ok := latest[o.Type]; ok && !o.EffectiveFrom.After(cur.EffectiveFrom) {
			continue
		}
		latest[o.Type] = o
	}

	if o, ok := latest[schedule.OverrideHoursPerDay]; ok {
		v := o.Value.InexactFloat64()
		adj.HoursPerDay = &v
	}
	if o, ok := latest[schedule.OverrideDaysPerWeek]; ok {
		v := int(o.Value.IntPart())
		if v >= 1 && v <= 7 {
			adj.DaysPerWeek = &v
		}
	}
	if o, ok := latest[schedule.OverrideMonthlyWorkingDays]; ok {
		v := o.Value.InexactFloat64()
		adj.MonthlyWorkingDays = &v
	}
	if o, ok := latest[schedule.OverrideCustomRate]; ok {
		v := o.Value
		adj.CustomRate = &v
	}
	return adj
}
