package wols

import (
	"errors"
	"fmt"
)

// ErrorCode classifies operational failures (parse, URL, migration, crypto)
// with a stable machine-readable value. Parse failures caused by a single
// validation error reuse that error's field-level code.
type ErrorCode string

// Operational error codes.
const (
	ErrCodeInvalidInput     ErrorCode = "invalid_input"
	ErrCodeInvalidJSON      ErrorCode = "invalid_json"
	ErrCodeInvalidFormat    ErrorCode = "invalid_format"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeInvalidURL       ErrorCode = "invalid_url"
	ErrCodeMigrationFailed  ErrorCode = "migration_failed"
	ErrCodeEncryptionFailed ErrorCode = "encryption_failed"
	ErrCodeDecryptionFailed ErrorCode = "decryption_failed"
	ErrCodeWeakIterations   ErrorCode = "weak_iterations"
)

// Error is the operational error value returned by parse, compact URL,
// migration, and crypto operations. Validation issues are never carried as
// an Error by the validator itself; only the parser promotes them.
type Error struct {
	Code    ErrorCode
	Message string
	// Path names the offending field when the error derives from a single
	// validation issue.
	Path string
	// Offset is the best-effort byte offset of a JSON syntax error.
	Offset int64
	// Details carries the full error list for validation_failed.
	Details []ValidationError
	// Err is the wrapped cause, when one can be exposed. Decryption
	// failures never carry one.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the operational code of err when it is (or wraps) a
// *Error, or the empty code otherwise.
func CodeOf(err error) ErrorCode {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Code
	}
	return ""
}
