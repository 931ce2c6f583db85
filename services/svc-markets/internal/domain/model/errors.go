package model

import "errors"

var (
	ErrMarketNotFound     = errors.New("market not found")
	ErrDuplicateMarket    = errors.New("market already exists")
	ErrInvalidMarketID    = errors.New("invalid market ID")
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
)

type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// ValidationErrors collects one entry per violated field rule.
type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Field + ": " + v.Errors[0].Message
}

func (v *ValidationErrors) Add(field string, value any, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}
