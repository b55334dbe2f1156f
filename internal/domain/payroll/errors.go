package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedRateType = errors.New("unsupported rate type")
	ErrInvalidRate         = errors.New("rate must be greater than zero")
	ErrInvalidPeriod       = errors.New("invalid payroll period")
	ErrNoEmployees         = errors.New("no employees to process")
	ErrRunNotFound         = errors.New("payroll run not found")
	ErrPayslipNotFound     = errors.New("payslip not found")
	ErrInvalidConfigValue  = errors.New("invalid payroll config value")
)

// CalculationError is an input-invalid failure for one employee. It aborts
// that employee's payslip but never the run.
type CalculationError struct {
	EmployeeID string
	Field      string
	Err        error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("employee %s: %s: %v", e.EmployeeID, e.Field, e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}
