package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) payroll.LedgerRepository {
	return &ledgerRepository{db: db}
}

// GetBonusTotals implements payroll.LedgerRepository.
func (r *ledgerRepository) GetBonusTotals(ctx context.Context, employeeID, companyID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT name, SUM(amount)
		FROM employee_bonuses
		WHERE employee_id = $1 AND company_id = $2
			AND pay_date BETWEEN $3::date AND $4::date
		GROUP BY name
	`
	return r.totals(ctx, query, employeeID, companyID, from, to)
}

// GetDeductionTotals implements payroll.LedgerRepository.
func (r *ledgerRepository) GetDeductionTotals(ctx context.Context, employeeID, companyID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT name, SUM(amount)
		FROM employee_deductions
		WHERE employee_id = $1 AND company_id = $2
			AND deduction_date BETWEEN $3::date AND $4::date
		GROUP BY name
	`
	return r.totals(ctx, query, employeeID, companyID, from, to)
}

func (r *ledgerRepository) totals(ctx context.Context, query, employeeID, companyID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, employeeID, companyID, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			name   string
			amount decimal.Decimal
		)
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		out[name] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}

	return out, nil
}

// GetPaidLeaveDays implements payroll.LedgerRepository. Only the part of each
// approved paid leave that overlaps the period counts.
func (r *ledgerRepository) GetPaidLeaveDays(ctx context.Context, employeeID, companyID string, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(
			CASE WHEN lr.is_half_day THEN 0.5
			ELSE (LEAST(lr.end_date, $4::date) - GREATEST(lr.start_date, $3::date) + 1)
			END
		), 0)::numeric
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		WHERE lr.employee_id = $1 AND lr.company_id = $2
			AND lr.status = 'approved'
			AND lt.is_paid = TRUE
			AND lr.start_date <= $4::date
			AND lr.end_date >= $3::date
	`

	var days decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, companyID, dateParam(from), dateParam(to)).Scan(&days); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum paid leave days: %w", err)
	}
	return days, nil
}
