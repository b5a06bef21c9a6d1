// Package businessflow contains the core business logic and use cases for the visitor counter
package businessflow

import (
	"errors"
	"fmt"
)

// Business error codes
const (
	CodeVisitRecordFailed = "VISIT_RECORD_FAILED"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsVisitRecordFailed reports whether err is a failed counter increment
func IsVisitRecordFailed(err error) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Code == CodeVisitRecordFailed
}

// ErrorCode extracts the business error code, or "" when err is not a BusinessError
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
