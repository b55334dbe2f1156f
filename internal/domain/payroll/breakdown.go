package payroll

// Leaf is one bucket of worked hours. Every worked hour lands in exactly one leaf.
type Leaf struct {
	Bucket string     `json:"bucket"`
	Key    PremiumKey `json:"key"`
	Hours  float64    `json:"hours"`
}

type NightDifferentialSplit struct {
	Total    float64 `json:"total"`
	Regular  float64 `json:"regular"`
	Overtime float64 `json:"overtime"`
}

type RestDaySplit struct {
	Total       float64 `json:"total"`
	PureRestDay float64 `json:"pure_rest_day"`
}

type HolidaySplit struct {
	Total    float64 `json:"total"`
	Regular  float64 `json:"regular"`
	Overtime float64 `json:"overtime"`
}

type Premiums struct {
	NightDifferential NightDifferentialSplit  `json:"night_differential"`
	RestDay           RestDaySplit            `json:"rest_day"`
	Holidays          map[string]HolidaySplit `json:"holidays"`
}

type EdgeCaseFlags struct {
	IsRestDay             bool `json:"is_rest_day"`
	IsRegularHoliday      bool `json:"is_regular_holiday"`
	IsSpecialHoliday      bool `json:"is_special_holiday"`
	HasOvertime           bool `json:"has_overtime"`
	HasNightDifferential  bool `json:"has_night_differential"`
	IsUltimateCaseRegular bool `json:"is_ultimate_case_regular"`
	IsUltimateCaseSpecial bool `json:"is_ultimate_case_special"`
	PremiumStackCount     int  `json:"premium_stack_count"`
}

// Breakdown is the classified form of one attendance record. Leaves is
// authoritative; the other fields are summaries of it.
type Breakdown struct {
	TotalHours    float64            `json:"total_hours"`
	RegularHours  float64            `json:"regular_hours"`
	Overtime      map[string]float64 `json:"overtime"`
	Premiums      Premiums           `json:"premiums"`
	EdgeCaseFlags EdgeCaseFlags      `json:"edge_case_flags"`
	Leaves        []Leaf             `json:"leaves"`
}

// Hours returns the hours recorded under key, 0 if none.
func (b Breakdown) Hours(key PremiumKey) float64 {
	for _, l := range b.Leaves {
		if l.Key == key {
			return l.Hours
		}
	}
	return 0
}

func (b Breakdown) LeafTotal() float64 {
	var sum float64
	for _, l := range b.Leaves {
		sum += l.Hours
	}
	return sum
}

func (b Breakdown) OvertimeHours() float64 {
	return b.Overtime["total"]
}
