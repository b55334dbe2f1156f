package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== RUNS ==========

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	warnings, err := json.Marshal(run.Warnings)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to encode run warnings: %w", err)
	}

	query := `
		INSERT INTO payroll_runs (
			id, company_id, run_by, period_start, period_end, status,
			employee_count, failed_count, total_gross, total_bonuses, total_deductions, total_net,
			warnings, created_at
		) VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		run.ID, run.CompanyID, run.RunBy, dateParam(run.PeriodStart), dateParam(run.PeriodEnd), run.Status,
		run.EmployeeCount, run.FailedCount, run.TotalGross, run.TotalBonuses, run.TotalDeductions, run.TotalNet,
		warnings, run.CreatedAt,
	).Scan(&run.CreatedAt)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, run_by, period_start, period_end, status,
			employee_count, failed_count, total_gross, total_bonuses, total_deductions, total_net,
			warnings, created_at
		FROM payroll_runs
		WHERE id = $1 AND company_id = $2
	`

	var (
		run      payroll.PayrollRun
		warnings []byte
	)
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&run.ID, &run.CompanyID, &run.RunBy, &run.PeriodStart, &run.PeriodEnd, &run.Status,
		&run.EmployeeCount, &run.FailedCount, &run.TotalGross, &run.TotalBonuses, &run.TotalDeductions, &run.TotalNet,
		&warnings, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &run.Warnings); err != nil {
			return payroll.PayrollRun{}, fmt.Errorf("failed to decode run warnings: %w", err)
		}
	}

	return run, nil
}

// ========== PAYSLIPS ==========

type payslipJSON struct {
	hoursByBucket []byte
	earnings      []byte
	deductions    []byte
	bonuses       []byte
}

func encodePayslip(p payroll.Payslip) (payslipJSON, error) {
	var (
		out payslipJSON
		err error
	)
	if out.hoursByBucket, err = json.Marshal(p.HoursByBucket); err != nil {
		return out, err
	}
	if out.earnings, err = json.Marshal(p.Earnings); err != nil {
		return out, err
	}
	if out.deductions, err = json.Marshal(p.Deductions); err != nil {
		return out, err
	}
	if out.bonuses, err = json.Marshal(p.Bonuses); err != nil {
		return out, err
	}
	return out, nil
}

func (j payslipJSON) decode(p *payroll.Payslip) error {
	if err := json.Unmarshal(j.hoursByBucket, &p.HoursByBucket); err != nil {
		return err
	}
	if err := json.Unmarshal(j.earnings, &p.Earnings); err != nil {
		return err
	}
	if err := json.Unmarshal(j.deductions, &p.Deductions); err != nil {
		return err
	}
	return json.Unmarshal(j.bonuses, &p.Bonuses)
}

func (r *payrollRepository) CreatePayslip(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	j, err := encodePayslip(p)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to encode payslip: %w", err)
	}

	query := `
		INSERT INTO payslips (
			id, run_id, company_id, employee_id, employee_code, employee_name,
			period_start, period_end, rate_type, hourly_rate,
			days_worked, total_hours, overtime_hours, night_diff_hours, late_minutes, undertime_minutes,
			hours_by_bucket, earnings, deductions, bonuses,
			gross_pay, total_bonuses, total_deductions, net_pay, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7::date, $8::date, $9, $10,
			$11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23, $24, $25
		)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		p.ID, p.RunID, p.CompanyID, p.EmployeeID, p.EmployeeCode, p.EmployeeName,
		dateParam(p.PeriodStart), dateParam(p.PeriodEnd), p.RateType, p.HourlyRate,
		p.DaysWorked, p.TotalHours, p.OvertimeHours, p.NightDiffHours, p.LateMinutes, p.UndertimeMinutes,
		j.hoursByBucket, j.earnings, j.deductions, j.bonuses,
		p.Earnings.GrossPay, p.TotalBonuses, p.Deductions.TotalDeductions, p.NetPay, p.CreatedAt,
	).Scan(&p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.Payslip{}, fmt.Errorf("payslip for employee %s already exists in run %s: %w", p.EmployeeID, p.RunID, err)
		}
		return payroll.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return p, nil
}

const payslipColumns = `
	id, run_id, company_id, employee_id, employee_code, employee_name,
	period_start, period_end, rate_type, hourly_rate,
	days_worked, total_hours, overtime_hours, night_diff_hours, late_minutes, undertime_minutes,
	hours_by_bucket, earnings, deductions, bonuses, total_bonuses, net_pay, created_at`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var (
		p payroll.Payslip
		j payslipJSON
	)
	err := row.Scan(
		&p.ID, &p.RunID, &p.CompanyID, &p.EmployeeID, &p.EmployeeCode, &p.EmployeeName,
		&p.PeriodStart, &p.PeriodEnd, &p.RateType, &p.HourlyRate,
		&p.DaysWorked, &p.TotalHours, &p.OvertimeHours, &p.NightDiffHours, &p.LateMinutes, &p.UndertimeMinutes,
		&j.hoursByBucket, &j.earnings, &j.deductions, &j.bonuses, &p.TotalBonuses, &p.NetPay, &p.CreatedAt,
	)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if err := j.decode(&p); err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to decode payslip %s: %w", p.ID, err)
	}
	return p, nil
}

func (r *payrollRepository) GetPayslipsByRunID(ctx context.Context, runID string, companyID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE run_id = $1 AND company_id = $2
		ORDER BY employee_code, employee_id
	`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payslip rows: %w", err)
	}

	return payslips, nil
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE id = $1 AND company_id = $2
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return p, nil
}
