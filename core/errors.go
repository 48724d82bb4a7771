package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldErrors returns the field errors carried by err, if err is a ValidationError.
func FieldErrors(err error) ([]FieldError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

// Result is the outcome of a business-rule operation.
// Rule violations are reported through Error, never as a Go error.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func Ok(message ...string) Result {
	res := Result{Success: true}
	if len(message) > 0 {
		res.Message = message[0]
	}
	return res
}

func Fail(reason string) Result {
	return Result{Success: false, Error: reason}
}
