package employee

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrCompensationNotFound = errors.New("employee has no active contract")
)
