package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveIDsByCompanyID(ctx context.Context, companyID string) ([]string, error)
	// GetCompensation returns the contract in force on asOf.
	GetCompensation(ctx context.Context, employeeID string, companyID string, asOf time.Time) (Compensation, error)
	// GetCompensationsBetween returns every contract overlapping [from, to],
	// oldest effective date first. No contract yields an empty slice.
	GetCompensationsBetween(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]Compensation, error)
}
