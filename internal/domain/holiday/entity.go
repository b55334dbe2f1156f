package holiday

import "time"

type Type string

const (
	TypeRegular Type = "regular"
	TypeSpecial Type = "special"
)

type Holiday struct {
	ID        string
	CompanyID string
	Date      time.Time
	Name      string
	Type      Type
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (h Holiday) IsRegular() bool { return h.Type == TypeRegular }
func (h Holiday) IsSpecial() bool { return h.Type == TypeSpecial }

// DateKey is the calendar key used to index holidays by date.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
