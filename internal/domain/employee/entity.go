package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	WorkScheduleID   *string
	EmploymentType   EmploymentType
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentType string

const (
	EmploymentTypeRegular      EmploymentType = "regular"
	EmploymentTypeProbationary EmploymentType = "probationary"
	EmploymentTypeContractual  EmploymentType = "contractual"
	EmploymentTypeProject      EmploymentType = "project"
	EmploymentTypeCasual       EmploymentType = "casual"
)

// EntitledToHolidayPay reports whether an unworked regular holiday is still paid.
func (t EmploymentType) EntitledToHolidayPay() bool {
	return t == EmploymentTypeRegular || t == EmploymentTypeProbationary
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

type RateType string

const (
	RateTypeHourly  RateType = "hourly"
	RateTypeDaily   RateType = "daily"
	RateTypeMonthly RateType = "monthly"
)

// Compensation is the contract row payroll reads. It is in force from
// EffectiveDate through EndDate, or indefinitely when EndDate is nil.
type Compensation struct {
	ContractID     string
	EmployeeID     string
	Rate           decimal.Decimal
	RateType       RateType
	EmploymentType EmploymentType
	ScheduleID     *string
	EffectiveDate  time.Time
	EndDate        *time.Time
}

const dateLayout = "2006-01-02"

// InForceOn compares calendar dates, so d may carry any location.
func (c Compensation) InForceOn(d time.Time) bool {
	day := d.Format(dateLayout)
	if c.EffectiveDate.Format(dateLayout) > day {
		return false
	}
	return c.EndDate == nil || c.EndDate.Format(dateLayout) >= day
}

// ContractOn returns the contract in force on d. contracts must be ordered by
// effective date; when several cover d the one that started last wins.
func ContractOn(contracts []Compensation, d time.Time) (Compensation, bool) {
	for i := len(contracts) - 1; i >= 0; i-- {
		if contracts[i].InForceOn(d) {
			return contracts[i], true
		}
	}
	return Compensation{}, false
}
