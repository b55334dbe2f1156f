package postgresql

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// dateParam binds a calendar day as text so the session time zone cannot shift it.
func dateParam(t time.Time) string {
	return t.Format("2006-01-02")
}
