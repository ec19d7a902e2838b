package errors

import (
	stderrors "errors"
	"fmt"
	"sync"
	"time"
)

// Code represents a typed error code. Codes are stable strings and are part
// of the API response body and the snapshot health section.
type Code string

// Simulator error codes.
const (
	ErrNotFound           Code = "NOT_FOUND"
	ErrConflict           Code = "CONFLICT"
	ErrQuotaExceeded      Code = "QUOTA_EXCEEDED"
	ErrInvalidRange       Code = "INVALID_RANGE"
	ErrInvalidArgument    Code = "INVALID_ARGUMENT"
	ErrBackendUnreachable Code = "BACKEND_UNREACHABLE"
	ErrAuthFailed         Code = "AUTH_FAILED"
	ErrManifestInvalid    Code = "MANIFEST_INVALID"
	ErrInternal           Code = "INTERNAL"
)

// defaultTTL is the auto-expiry duration for errors not re-reported.
const defaultTTL = 5 * time.Minute

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock uses the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// SimError is a typed simulator error with code, component, and optional wrapped error.
type SimError struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Component string `json:"component"`
	Timestamp int64  `json:"timestamp"`
	Err       error  `json:"-"`
}

// New builds a SimError stamped with the current time.
func New(code Code, component, format string, args ...any) *SimError {
	return &SimError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Component: component,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Wrap is New with an underlying cause.
func Wrap(code Code, component string, err error, format string, args ...any) *SimError {
	e := New(code, component, format, args...)
	e.Err = err
	return e
}

// Error implements the error interface.
func (e *SimError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As compatibility.
func (e *SimError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first SimError in err's chain, or "" when
// err is nil or carries no code.
func CodeOf(err error) Code {
	var se *SimError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

type entry struct {
	err        SimError
	lastReport time.Time
}

// ErrorCollector is a thread-safe store for recently reported errors.
// Errors are keyed by Code+Component and auto-expire after the TTL
// if not re-reported.
type ErrorCollector struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	entries map[string]entry
}

// NewErrorCollector creates an ErrorCollector with the given clock and the
// default five minute TTL.
func NewErrorCollector(clock Clock) *ErrorCollector {
	return &ErrorCollector{
		clock:   clock,
		ttl:     defaultTTL,
		entries: make(map[string]entry),
	}
}

func key(code Code, component string) string {
	return string(code) + "|" + component
}

// Report stores or refreshes an error.
func (ec *ErrorCollector) Report(err SimError) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.entries[key(err.Code, err.Component)] = entry{
		err:        err,
		lastReport: ec.clock.Now(),
	}
}

// ReportErr records err if it is a SimError; other errors are recorded as
// ErrInternal against component. Nil is ignored.
func (ec *ErrorCollector) ReportErr(component string, err error) {
	if err == nil {
		return
	}
	var se *SimError
	if stderrors.As(err, &se) {
		cp := *se
		if cp.Component == "" {
			cp.Component = component
		}
		ec.Report(cp)
		return
	}
	ec.Report(SimError{
		Code:      ErrInternal,
		Message:   err.Error(),
		Component: component,
		Timestamp: ec.clock.Now().UnixMilli(),
		Err:       err,
	})
}

// GetActiveErrors returns all errors reported within the TTL window.
func (ec *ErrorCollector) GetActiveErrors() []SimError {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.expireLocked()
	result := make([]SimError, 0, len(ec.entries))
	for _, e := range ec.entries {
		result = append(result, e.err)
	}
	return result
}

// GetActiveErrorCodes returns a deduplicated list of active error codes.
func (ec *ErrorCollector) GetActiveErrorCodes() []string {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.expireLocked()
	seen := make(map[Code]struct{})
	codes := make([]string, 0)
	for _, e := range ec.entries {
		if _, ok := seen[e.err.Code]; !ok {
			seen[e.err.Code] = struct{}{}
			codes = append(codes, string(e.err.Code))
		}
	}
	return codes
}

func (ec *ErrorCollector) expireLocked() {
	now := ec.clock.Now()
	for k, e := range ec.entries {
		if now.Sub(e.lastReport) > ec.ttl {
			delete(ec.entries, k)
		}
	}
}

// Clear removes all tracked errors.
func (ec *ErrorCollector) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.entries = make(map[string]entry)
}
