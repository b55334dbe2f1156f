package auth

import (
	"context"

	"github.com/go-chi/jwtauth/v5"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// CanRunPayroll reports whether the role may generate runs and correct attendance.
func (r Role) CanRunPayroll() bool {
	return r == RoleOwner || r == RoleManager
}

// Claims are the access-token fields the engine relies on. Tokens are issued
// by the HR backend; this service only verifies them.
type Claims struct {
	UserID     string
	CompanyID  string
	EmployeeID string
	Role       Role
}

// ClaimsFromContext reads the verified token placed on ctx by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	token, raw, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	c.UserID, _ = raw["user_id"].(string)
	c.CompanyID, _ = raw["company_id"].(string)
	c.EmployeeID, _ = raw["employee_id"].(string)
	if role, ok := raw["role"].(string); ok {
		c.Role = Role(role)
	}
	if c.CompanyID == "" {
		return c, ErrCompanyIDRequired
	}
	return c, nil
}
