package task

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("task not found")
	ErrConflict   = errors.New("task code conflict")
)
