// Unified error handling for the APT post-processor
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors
	ErrConfig       ErrorCode = "CONFIG"
	ErrConfigOption ErrorCode = "CONFIG_OPTION"

	// APT input errors
	ErrAPTParse       ErrorCode = "APT_PARSE"
	ErrUnknownCommand ErrorCode = "UNKNOWN_COMMAND"
	ErrInvalidParam   ErrorCode = "INVALID_PARAM"

	// Geometry errors
	ErrArcGeometry ErrorCode = "ARC_GEOMETRY"

	// Output and resources
	ErrOutput      ErrorCode = "OUTPUT"
	ErrToolLibrary ErrorCode = "TOOL_LIBRARY"
)

// PostError is the unified error type for the post-processor
type PostError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Line is the APT source line (0 when unknown)
	Line int

	// Command is the APT major word being processed
	Command string

	// Option is the parameter or config option name (if applicable)
	Option string

	// Reason is a short machine-readable tag, used as a metrics label
	Reason string

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *PostError) Error() string {
	where := e.Command
	if e.Line > 0 {
		where = fmt.Sprintf("%s@%d", e.Command, e.Line)
	}
	msg := fmt.Sprintf("[%s:%s] %s", e.Code, where, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *PostError) Unwrap() error {
	return e.Err
}

// SetLine sets the source line number
func (e *PostError) SetLine(line int) *PostError {
	e.Line = line
	return e
}

// SetCommand sets the APT major word
func (e *PostError) SetCommand(cmd string) *PostError {
	e.Command = cmd
	return e
}

// SetOption sets the parameter or option name
func (e *PostError) SetOption(option string) *PostError {
	e.Option = option
	return e
}

// SetReason sets the machine-readable reason tag
func (e *PostError) SetReason(reason string) *PostError {
	e.Reason = reason
	return e
}

// SetContext adds additional context
func (e *PostError) SetContext(key string, value interface{}) *PostError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *PostError {
	return &PostError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new PostError
func New(code ErrorCode, message string) *PostError {
	return &PostError{
		Code:    code,
		Message: message,
	}
}

// ConfigOptionError creates an error for an invalid controller option
func ConfigOptionError(section, option, reason string) *PostError {
	return New(ErrConfigOption, fmt.Sprintf("option '%s' in section '%s': %s", option, section, reason)).
		SetOption(option)
}

// APTParseError creates an error for an APT statement that cannot be parsed
func APTParseError(line int, text, reason string) *PostError {
	return New(ErrAPTParse, fmt.Sprintf("cannot parse %q: %s", text, reason)).
		SetLine(line)
}

// UnknownCommandError creates an error for a major word without handler
func UnknownCommandError(major string) *PostError {
	return New(ErrUnknownCommand, fmt.Sprintf("no handler for %s", major)).
		SetCommand(major)
}

// InvalidParameterError creates an error for a bad command parameter
func InvalidParameterError(major, param, reason string) *PostError {
	return New(ErrInvalidParam, fmt.Sprintf("%s: invalid %s (%s)", major, param, reason)).
		SetCommand(major).
		SetOption(param)
}

// ArcGeometryError creates an error for an arc that fails validation
func ArcGeometryError(reason, message string) *PostError {
	return New(ErrArcGeometry, message).SetReason(reason)
}

// OutputError wraps a failure to write to the output sink
func OutputError(err error) *PostError {
	return Wrap(err, ErrOutput, "write failed")
}

// CodeOf returns the code of the first PostError in the chain, or ""
func CodeOf(err error) ErrorCode {
	var pe *PostError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// ReasonOf returns the reason tag of the first PostError in the chain
func ReasonOf(err error) string {
	var pe *PostError
	if stderrors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Recoverable reports whether processing may continue after err.
// Geometry, parameter, parse and dispatch errors only affect one command.
func Recoverable(err error) bool {
	switch CodeOf(err) {
	case ErrArcGeometry, ErrInvalidParam, ErrAPTParse, ErrUnknownCommand:
		return true
	}
	return false
}
