// Package pipeerr provides the structured error type used across every
// service boundary in the pipeline.
package pipeerr

import (
	"fmt"
	"runtime"
	"time"
)

// Code identifies a distinct failure mode. Codes are stable across releases;
// Message is free text for operators, Code is what callers switch on.
type Code string

const (
	// Order/gateway errors
	ErrInvalidOrder   Code = "INVALID_ORDER"
	ErrOrderNotFound  Code = "ORDER_NOT_FOUND"
	ErrDuplicateOrder Code = "DUPLICATE_ORDER"
	ErrRateLimited    Code = "RATE_LIMITED"
	ErrUnauthorized   Code = "UNAUTHORIZED"

	// Risk errors
	ErrRiskLimitExceeded     Code = "RISK_LIMIT_EXCEEDED"
	ErrPositionLimitExceeded Code = "POSITION_LIMIT_EXCEEDED"
	ErrComplianceRuleFailed  Code = "COMPLIANCE_RULE_FAILED"

	// Matching errors
	ErrMatchingFailed Code = "MATCHING_FAILED"
	ErrOrderBookEmpty Code = "ORDER_BOOK_EMPTY"
	ErrCrossedMarket  Code = "CROSSED_MARKET"

	// Execution errors
	ErrVenueUnavailable Code = "VENUE_UNAVAILABLE"
	ErrExecutionTimeout Code = "EXECUTION_TIMEOUT"
	ErrExecutionRetries Code = "EXECUTION_RETRIES_EXHAUSTED"

	// Compliance errors
	ErrNoKYCRecord      Code = "NO_KYC_RECORD"
	ErrKYCNotApproved   Code = "KYC_NOT_APPROVED"
	ErrSanctionsHit     Code = "SANCTIONS_HIT"
	ErrHighRiskScore    Code = "HIGH_RISK_SCORE"

	// Market data errors
	ErrSymbolNotFound Code = "SYMBOL_NOT_FOUND"
	ErrFeedDisconnect Code = "FEED_DISCONNECT"

	// System errors
	ErrServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	ErrTimeout              Code = "TIMEOUT"
	ErrInternal             Code = "INTERNAL_ERROR"
	ErrDatabaseConnection   Code = "DATABASE_CONNECTION"
	ErrValidationFailed     Code = "VALIDATION_FAILED"
	ErrMissingField         Code = "MISSING_FIELD"
	ErrConfigurationInvalid Code = "CONFIGURATION_INVALID"
)

// Severity ranks how urgently an error needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error is the structured error returned across every package boundary in
// this module. It carries enough context to log, alert on, and correlate
// without re-parsing a message string.
type Error struct {
	Code      Code
	Message   string
	Details   map[string]interface{}
	Severity  Severity
	Timestamp time.Time
	File      string
	Line      int
	Function  string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithDetail attaches a structured key/value pair, useful for logging fields
// that shouldn't be baked into Message.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// New creates an Error, capturing the caller's file/line/function.
func New(code Code, message string) *Error {
	return newAt(1, code, message, nil)
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return newAt(1, code, fmt.Sprintf(format, args...), nil)
}

// Wrap wraps an existing error under a pipeline error code.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return newAt(1, code, message, err)
}

func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return newAt(1, code, fmt.Sprintf(format, args...), err)
}

func newAt(skip int, code Code, message string, cause error) *Error {
	pc, file, line, _ := runtime.Caller(skip + 1)
	var funcName string
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcName = fn.Name()
	}
	return &Error{
		Code:      code,
		Message:   message,
		Severity:  severityFor(code),
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
		Function:  funcName,
		Cause:     cause,
	}
}

func severityFor(code Code) Severity {
	switch code {
	case ErrSanctionsHit, ErrNoKYCRecord, ErrDatabaseConnection, ErrInternal:
		return SeverityCritical
	case ErrKYCNotApproved, ErrHighRiskScore, ErrRiskLimitExceeded, ErrPositionLimitExceeded, ErrMatchingFailed:
		return SeverityHigh
	case ErrComplianceRuleFailed, ErrVenueUnavailable, ErrExecutionRetries, ErrFeedDisconnect:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// As reports whether err, or any error it wraps, is a *Error, writing it to
// target when found.
func As(err error, target **Error) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*Error); ok {
		*target = pe
		return true
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return As(unwrapper.Unwrap(), target)
	}
	return false
}

// CodeOf extracts the Code from err, or "" if err isn't (or doesn't wrap) a
// *Error.
func CodeOf(err error) Code {
	var pe *Error
	if As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsRetryable reports whether an error represents a transient condition
// worth retrying.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrTimeout, ErrServiceUnavailable, ErrDatabaseConnection, ErrVenueUnavailable, ErrExecutionTimeout:
		return true
	default:
		return false
	}
}
