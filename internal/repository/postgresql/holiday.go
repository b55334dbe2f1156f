package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// GetActiveBetween implements holiday.HolidayRepository.
// Company holidays sort ahead of global ones on the same date.
func (h *holidayRepositoryImpl) GetActiveBetween(ctx context.Context, companyID string, from, to time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		SELECT id, COALESCE(company_id::text, ''), date, name, holiday_type, is_active, created_at, updated_at
		FROM holidays
		WHERE (company_id = $1 OR company_id IS NULL)
			AND is_active = TRUE
			AND date BETWEEN $2::date AND $3::date
		ORDER BY date, company_id NULLS LAST, created_at
	`

	rows, err := q.Query(ctx, query, companyID, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var hol holiday.Holiday
		if err := rows.Scan(&hol.ID, &hol.CompanyID, &hol.Date, &hol.Name, &hol.Type, &hol.IsActive, &hol.CreatedAt, &hol.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, hol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holiday rows: %w", err)
	}

	return holidays, nil
}
