package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/shopspring/decimal"
)

// ClockTime is a time of day stored as minutes after midnight.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return NewClockTime(h, m), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On places the clock time on the calendar day of date, in date's location.
func (c ClockTime) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, c.Hour(), c.Minute(), 0, 0, date.Location())
}

type Schedule struct {
	ID            string
	CompanyID     string
	Name          string
	ShiftStart    ClockTime
	ShiftEnd      ClockTime
	BreakStart    *ClockTime
	BreakEnd      *ClockTime
	BreakDuration int   // minutes
	DaysOfWeek    []int // 1=Monday, ..., 7=Sunday
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultSchedule is used when an employee has no schedule on file.
func DefaultSchedule() Schedule {
	return Schedule{
		Name:       "Default",
		ShiftStart: NewClockTime(8, 0),
		ShiftEnd:   NewClockTime(16, 0),
		DaysOfWeek: []int{1, 2, 3, 4, 5},
	}
}

// CrossesMidnight reports whether the shift ends on the day after it starts.
func (s Schedule) CrossesMidnight() bool {
	return s.ShiftEnd <= s.ShiftStart
}

// Bounds resolves the shift start and end against the calendar day of date.
func (s Schedule) Bounds(date time.Time) (start, end time.Time) {
	start = s.ShiftStart.On(date)
	end = s.ShiftEnd.On(date)
	if s.CrossesMidnight() {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// BreakMinutes prefers the declared duration and falls back to break_end - break_start.
func (s Schedule) BreakMinutes() int {
	if s.BreakDuration > 0 {
		return s.BreakDuration
	}
	if s.BreakStart != nil && s.BreakEnd != nil {
		d := int(*s.BreakEnd) - int(*s.BreakStart)
		if d < 0 {
			d += 24 * 60
		}
		return d
	}
	return 0
}

func (s Schedule) HasBreak() bool {
	return s.BreakMinutes() > 0
}

// WorkHours is the scheduled shift length net of break.
func (s Schedule) WorkHours() float64 {
	minutes := int(s.ShiftEnd) - int(s.ShiftStart)
	if s.CrossesMidnight() {
		minutes += 24 * 60
	}
	minutes -= s.BreakMinutes()
	if minutes < 0 {
		return 0
	}
	return float64(minutes) / 60
}

func (s Schedule) WorksOn(weekday int) bool {
	for _, d := range s.DaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

// ISOWeekday maps time.Weekday to 1=Monday, ..., 7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

type OverrideType string

const (
	OverrideHoursPerDay        OverrideType = "hours_per_day"
	OverrideDaysPerWeek        OverrideType = "days_per_week"
	OverrideMonthlyWorkingDays OverrideType = "monthly_working_days"
	OverrideCustomRate         OverrideType = "custom_rate"
)

// Override is a per-employee adjustment valid in [EffectiveFrom, EffectiveUntil].
type Override struct {
	ID             string
	EmployeeID     string
	Type           OverrideType
	Value          decimal.Decimal
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
	CreatedAt      time.Time
}

func (o Override) ActiveOn(date time.Time) bool {
	day := holiday.DateKey(date)
	if day < holiday.DateKey(o.EffectiveFrom) {
		return false
	}
	if o.EffectiveUntil != nil && day > holiday.DateKey(*o.EffectiveUntil) {
		return false
	}
	return true
}

// Adjustments are the overrides in force on one date. Nil means "use the default".
type Adjustments struct {
	HoursPerDay        *float64
	DaysPerWeek        *int
	MonthlyWorkingDays *float64
	CustomRate         *decimal.Decimal
}

// Resolution is everything the engine needs to know about one employee on one date.
type Resolution struct {
	Date        time.Time
	Schedule    Schedule
	HasSchedule bool
	IsRestDay   bool
	Holiday     *holiday.Holiday
	// Conflicts lists further active holidays on the same date that lost to Holiday.
	Conflicts   []holiday.Holiday
	Adjustments Adjustments
}

func (r Resolution) IsRegularHoliday() bool {
	return r.Holiday != nil && r.Holiday.IsRegular()
}

func (r Resolution) IsSpecialHoliday() bool {
	return r.Holiday != nil && r.Holiday.IsSpecial()
}

// DayResolver answers calendar questions for one employee.
type DayResolver interface {
	Resolve(date time.Time, isDayOff bool) Resolution
}
