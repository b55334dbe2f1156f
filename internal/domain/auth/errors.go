package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrCompanyIDRequired     = errors.New("token carries no company")
	ErrManagerAccessRequired = errors.New("manager or owner access required")
	ErrEmployeeIDRequired    = errors.New("token carries no employee")
)
