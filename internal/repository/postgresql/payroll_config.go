package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

type payrollConfigRepository struct {
	db *database.DB
}

func NewPayrollConfigRepository(db *database.DB) payroll.ConfigRepository {
	return &payrollConfigRepository{db: db}
}

// GetActive implements payroll.ConfigRepository.
func (r *payrollConfigRepository) GetActive(ctx context.Context, companyID string) ([]payroll.ConfigEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, config_key, config_value, data_type, effective_date,
			is_active, description, created_at, updated_at
		FROM payroll_configs
		WHERE is_active = TRUE AND (company_id = $1 OR company_id IS NULL)
		ORDER BY config_key, effective_date, created_at
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll configs: %w", err)
	}
	defer rows.Close()

	var entries []payroll.ConfigEntry
	for rows.Next() {
		var e payroll.ConfigEntry
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.Key, &e.Value, &e.DataType, &e.EffectiveDate,
			&e.IsActive, &e.Description, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll config: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payroll config rows: %w", err)
	}

	return entries, nil
}

// Upsert implements payroll.ConfigRepository. Rows are versioned by
// (company, key, effective_date); writing the same version replaces it.
func (r *payrollConfigRepository) Upsert(ctx context.Context, entry payroll.ConfigEntry) (payroll.ConfigEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_configs (
			id, company_id, config_key, config_value, data_type, effective_date, is_active, description
		) VALUES (uuidv7(), $1, $2, $3, $4, $5::date, $6, $7)
		ON CONFLICT (company_id, config_key, effective_date) DO UPDATE SET
			config_value = EXCLUDED.config_value,
			data_type = EXCLUDED.data_type,
			is_active = EXCLUDED.is_active,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.CompanyID, entry.Key, entry.Value, entry.DataType, dateParam(entry.EffectiveDate), entry.IsActive, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return payroll.ConfigEntry{}, fmt.Errorf("failed to upsert payroll config %s: %w", entry.Key, err)
	}

	return entry, nil
}
