package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, company_id, employee_code, full_name, work_schedule_id,
			employment_type, employment_status, hire_date, created_at, updated_at
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&emp.ID, &emp.CompanyID, &emp.EmployeeCode, &emp.FullName, &emp.WorkScheduleID,
		&emp.EmploymentType, &emp.EmploymentStatus, &emp.HireDate, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}

	return emp, nil
}

// GetActiveIDsByCompanyID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActiveIDsByCompanyID(ctx context.Context, companyID string) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id
		FROM employees
		WHERE company_id = $1 AND employment_status = $2 AND deleted_at IS NULL
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, companyID, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employee rows: %w", err)
	}

	return ids, nil
}

// GetCompensation implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetCompensation(ctx context.Context, employeeID string, companyID string, asOf time.Time) (employee.Compensation, error) {
	q := GetQuerier(ctx, e.db)

	// The latest contract that started on or before asOf and has not ended.
	query := `
		SELECT ec.id, ec.employee_id, ec.rate, ec.rate_type,
			COALESCE(ec.employment_type, e.employment_type), ec.work_schedule_id,
			ec.effective_date, ec.end_date
		FROM employee_contracts ec
		JOIN employees e ON e.id = ec.employee_id
		WHERE ec.employee_id = $1
			AND e.company_id = $2
			AND ec.effective_date <= $3::date
			AND (ec.end_date IS NULL OR ec.end_date >= $3::date)
		ORDER BY ec.effective_date DESC, ec.created_at DESC
		LIMIT 1
	`

	var c employee.Compensation
	err := q.QueryRow(ctx, query, employeeID, companyID, dateParam(asOf)).Scan(
		&c.ContractID, &c.EmployeeID, &c.Rate, &c.RateType,
		&c.EmploymentType, &c.ScheduleID, &c.EffectiveDate, &c.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Compensation{}, employee.ErrCompensationNotFound
		}
		return employee.Compensation{}, fmt.Errorf("failed to get compensation for employee %s: %w", employeeID, err)
	}

	return c, nil
}

// GetCompensationsBetween implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetCompensationsBetween(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]employee.Compensation, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ec.id, ec.employee_id, ec.rate, ec.rate_type,
			COALESCE(ec.employment_type, e.employment_type), ec.work_schedule_id,
			ec.effective_date, ec.end_date
		FROM employee_contracts ec
		JOIN employees e ON e.id = ec.employee_id
		WHERE ec.employee_id = $1
			AND e.company_id = $2
			AND ec.effective_date <= $4::date
			AND (ec.end_date IS NULL OR ec.end_date >= $3::date)
		ORDER BY ec.effective_date, ec.created_at
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var contracts []employee.Compensation
	for rows.Next() {
		var c employee.Compensation
		if err := rows.Scan(
			&c.ContractID, &c.EmployeeID, &c.Rate, &c.RateType,
			&c.EmploymentType, &c.ScheduleID, &c.EffectiveDate, &c.EndDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contract rows: %w", err)
	}

	return contracts, nil
}
