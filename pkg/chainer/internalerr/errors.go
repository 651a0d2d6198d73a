package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrParse         = errors.New("parse error")
	ErrInvalidConfig = errors.New("invalid configuration")
)
