package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrProjectNotFound = errors.New("project not found")
)
