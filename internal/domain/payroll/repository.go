package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ConfigRepository interface {
	// GetActive returns every active row visible to the company: its own rows and global rows.
	GetActive(ctx context.Context, companyID string) ([]ConfigEntry, error)
	Upsert(ctx context.Context, entry ConfigEntry) (ConfigEntry, error)
}

type PayrollRepository interface {
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	CreatePayslip(ctx context.Context, payslip Payslip) (Payslip, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	GetPayslipsByRunID(ctx context.Context, runID string, companyID string) ([]Payslip, error)
	GetPayslipByID(ctx context.Context, id string, companyID string) (Payslip, error)
}

// LedgerRepository reads the ad-hoc bonus/deduction ledgers and paid leave.
type LedgerRepository interface {
	GetBonusTotals(ctx context.Context, employeeID, companyID string, from, to time.Time) (map[string]decimal.Decimal, error)
	GetDeductionTotals(ctx context.Context, employeeID, companyID string, from, to time.Time) (map[string]decimal.Decimal, error)
	GetPaidLeaveDays(ctx context.Context, employeeID, companyID string, from, to time.Time) (decimal.Decimal, error)
}
