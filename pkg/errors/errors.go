// Package errors provides the unified error type and factory functions for the
// timeline engine.  Every layer (domain, application, interfaces) uses AppError
// as the single carrier for structured error information, enabling consistent
// logging and degraded-result reporting at component boundaries.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError — the canonical engine error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout the engine.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeDateUnparseable, "cannot parse mention date")
//	return errors.Wrap(err, errors.ErrCodeInternal, "timeline build failed")
//	return errors.InvalidParam("mention name must not be empty").
//	           WithDetail("category=procedure position=412")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (mention names, offsets, scale
	// types) that aids debugging without bloating the primary message.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error

	// Stack contains the formatted call-stack captured at the point of error
	// creation.  Stack is intentionally not included in Error() output; the
	// structured logger attaches it as a separate field when needed.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without additional boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string.  It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
// Use this to attach a lower-level error to an already-constructed AppError
// without going through Wrap.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
// A call-stack snapshot is captured automatically.
//
// New is the preferred factory for errors that originate in the current layer
// without an underlying cause from a lower layer.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(parseDate(raw), errors.ErrCodeDateUnparseable, "mention date")
//
// When err is already an *AppError and code is ErrCodeUnknown the original
// code is preserved, preventing loss of the original classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == ErrCodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.  It is the idiomatic way to check specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeAnchorMissing) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, ErrCodeUnknown is returned.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions for the most common error conditions
// ─────────────────────────────────────────────────────────────────────────────

// InvalidParam constructs an ErrCodeValidation AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NotFound constructs an ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs an ErrCodeInternal AppError.
// Use this for unexpected engine-side failures where no more specific code
// applies.  Always log the underlying cause before or after calling Internal.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}
