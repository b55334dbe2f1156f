package payroll

import (
	"fmt"
	"strings"
)

// HolidayKind is the holiday axis of a premium key.
type HolidayKind uint8

const (
	HolidayNone HolidayKind = iota
	HolidayRegular
	HolidaySpecial
)

var holidayKindNames = [...]string{"none", "regular", "special"}

func (h HolidayKind) String() string {
	if int(h) < len(holidayKindNames) {
		return holidayKindNames[h]
	}
	return fmt.Sprintf("HolidayKind(%d)", h)
}

func (h HolidayKind) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HolidayKind) UnmarshalText(b []byte) error {
	for i, name := range holidayKindNames {
		if string(b) == name {
			*h = HolidayKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown holiday kind %q", b)
}

// PremiumKey identifies one leaf of the breakdown tree: the combination of
// conditions that held for a block of worked hours.
type PremiumKey struct {
	RestDay   bool        `json:"rest_day"`
	Holiday   HolidayKind `json:"holiday"`
	Overtime  bool        `json:"overtime"`
	NightDiff bool        `json:"night_diff"`
}

// Name spells out the active combination, e.g. "night_diff_regular_holiday_rest_day_overtime".
func (k PremiumKey) Name() string {
	parts := make([]string, 0, 4)
	if k.NightDiff {
		parts = append(parts, "night_diff")
	}
	switch k.Holiday {
	case HolidayRegular:
		parts = append(parts, "regular_holiday")
	case HolidaySpecial:
		parts = append(parts, "special_holiday")
	}
	if k.RestDay {
		parts = append(parts, "rest_day")
	}
	if len(parts) == 0 {
		parts = append(parts, "regular")
	}
	if k.Overtime {
		parts = append(parts, "overtime")
	}
	return strings.Join(parts, "_")
}

// DayKey drops the per-hour axes and keeps only the day type.
func (k PremiumKey) DayKey() PremiumKey {
	return PremiumKey{RestDay: k.RestDay, Holiday: k.Holiday}
}

// Stacked reports whether the day type carries any premium.
func (k PremiumKey) Stacked() bool {
	return k.RestDay || k.Holiday != HolidayNone
}

// StackCount counts the simultaneously true conditions among rest day,
// holiday, overtime and night differential.
func (k PremiumKey) StackCount() int {
	n := 0
	for _, on := range []bool{k.RestDay, k.Holiday != HolidayNone, k.Overtime, k.NightDiff} {
		if on {
			n++
		}
	}
	return n
}

// AllPremiumKeys enumerates every combination of the four axes in canonical order.
func AllPremiumKeys() []PremiumKey {
	keys := make([]PremiumKey, 0, 24)
	for _, overtime := range []bool{false, true} {
		for _, nd := range []bool{false, true} {
			for _, h := range []HolidayKind{HolidayNone, HolidayRegular, HolidaySpecial} {
				for _, rest := range []bool{false, true} {
					keys = append(keys, PremiumKey{RestDay: rest, Holiday: h, Overtime: overtime, NightDiff: nd})
				}
			}
		}
	}
	return keys
}
