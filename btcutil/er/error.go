// Package er defines the typed error-result convention used throughout this
// module in place of the bare `error` interface. Every fallible function in
// the codec, script, store, chain engine and peer layers returns an `er.R`
// so that callers can both treat it as a normal error and, where a call
// site needs to, switch on a specific *ErrorCode.
package er

import (
	"fmt"
)

// R is the result type returned by (almost) every function in this module
// that can fail. A nil R means success. It embeds the standard error
// interface so it composes with %v/%s formatting and errors.Is/As via
// Unwrap, while optionally carrying a *ErrorCode for typed dispatch.
type R interface {
	error
	// Message is the human readable message, without any code prefix.
	Message() string
	// Code returns the *ErrorCode this error was raised with, or nil if it
	// is a bare/generic error.
	Code() *ErrorCode
	// AddMessage prepends additional context to the error, returning the
	// same R so call sites can do `return err.AddMessage("while parsing")`.
	AddMessage(msg string) R
	// Unwrap exposes the wrapped stdlib error, if any, for errors.As/Is.
	Unwrap() error
}

type errImpl struct {
	code    *ErrorCode
	message string
	wrapped error
}

func (e *errImpl) Error() string {
	if e.code != nil {
		return e.code.name + ": " + e.message
	}
	return e.message
}

func (e *errImpl) Message() string { return e.message }
func (e *errImpl) Code() *ErrorCode { return e.code }
func (e *errImpl) Unwrap() error    { return e.wrapped }

func (e *errImpl) AddMessage(msg string) R {
	return &errImpl{
		code:    e.code,
		message: msg + ": " + e.message,
		wrapped: e.wrapped,
	}
}

// New constructs a generic (uncoded) error from a message.
func New(message string) R {
	return &errImpl{message: message}
}

// Errorf constructs a generic (uncoded) error from a format string.
func Errorf(format string, args ...interface{}) R {
	return &errImpl{message: fmt.Sprintf(format, args...)}
}

// E wraps a standard library error as an R. Returns nil if err is nil, so
// that the common `return er.E(err)` pattern at the bottom of a function is
// safe to use unconditionally.
func E(err error) R {
	if err == nil {
		return nil
	}
	if r, ok := err.(R); ok {
		return r
	}
	return &errImpl{message: err.Error(), wrapped: err}
}

// ErrorType is a namespace for declaring related *ErrorCode constants, e.g.:
//
//	var ScriptErrorType = er.NewErrorType("txscript")
//	var ErrStackUnderflow = ScriptErrorType.Code("ErrStackUnderflow")
type ErrorType struct {
	namespace string
}

// NewErrorType declares a new namespace of error codes.
func NewErrorType(namespace string) ErrorType {
	return ErrorType{namespace: namespace}
}

// GenericErrorType is used by call sites that want a one-off named error
// without declaring a whole ErrorType namespace first.
var GenericErrorType = NewErrorType("generic")

// ErrorCode identifies one specific, switchable failure kind within a
// namespace. Construct with ErrorType.Code or ErrorType.CodeWithDetail.
type ErrorCode struct {
	namespace string
	name      string
	detail    string
}

// Code declares a new error code with no canned detail message.
func (t ErrorType) Code(name string) *ErrorCode {
	return &ErrorCode{namespace: t.namespace, name: name}
}

// CodeWithDetail declares a new error code along with a default detail
// message used when New() is called with no further context.
func (t ErrorType) CodeWithDetail(name, detail string) *ErrorCode {
	return &ErrorCode{namespace: t.namespace, name: name, detail: detail}
}

// New constructs an R carrying this code, using the code's canned detail
// message.
func (c *ErrorCode) New() R {
	return &errImpl{code: c, message: c.detail}
}

// Default is an alias for New, for readability at call sites that just want
// "the default error for this code".
func (c *ErrorCode) Default() R {
	return c.New()
}

// Detail constructs an R carrying this code with a custom message instead of
// the canned detail.
func (c *ErrorCode) Detail(message string) R {
	return &errImpl{code: c, message: message}
}

// Is reports whether err (or anything it wraps, if err is an R chain) was
// raised with this code.
func (c *ErrorCode) Is(err error) bool {
	if err == nil {
		return false
	}
	r, ok := err.(R)
	if !ok {
		return false
	}
	return r.Code() == c
}

func (c *ErrorCode) String() string {
	return c.namespace + "." + c.name
}

// loopBreak is a sentinel returned by ForEach-style callbacks (see
// btcutil/util/tmap) to stop iteration early without that being treated as
// a real failure by the caller.
var loopBreakCode = NewErrorType("er").Code("LoopBreak")

// LoopBreak returns the sentinel error a ForEach callback should return to
// stop iteration without propagating a failure.
func LoopBreak() R {
	return loopBreakCode.New()
}

// IsLoopBreak reports whether err is the LoopBreak sentinel.
func IsLoopBreak(err R) bool {
	return err != nil && err.Code() == loopBreakCode
}
