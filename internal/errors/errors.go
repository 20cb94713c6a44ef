// Package errors provides structured error handling for scandeck.
// It defines error codes and the typed errors raised by result parsing,
// the scan process boundary, the archive and configuration loading.
package errors

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeConflict      ErrorCode = "CONFLICT"
	CodeCanceled      ErrorCode = "CANCELED"

	// Scan lifecycle errors.
	CodeEmptyCommand ErrorCode = "EMPTY_COMMAND"
	CodeNoTarget     ErrorCode = "NO_TARGET"
	CodeScanAborted  ErrorCode = "SCAN_ABORTED"
	CodeInvalidState ErrorCode = "INVALID_STATE"

	// Result parsing errors.
	CodeParseFailed  ErrorCode = "PARSE_FAILED"
	CodeRootRequired ErrorCode = "ROOT_REQUIRED"

	// Process boundary errors.
	CodeProcessSpawn ErrorCode = "PROCESS_SPAWN"
	CodeProcessPoll  ErrorCode = "PROCESS_POLL"

	// Database errors.
	CodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	CodeDatabaseQuery      ErrorCode = "DATABASE_QUERY"
	CodeDatabaseTimeout    ErrorCode = "DATABASE_TIMEOUT"

	// File system errors.
	CodeFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	CodeFilePermission ErrorCode = "FILE_PERMISSION"
)

// ParseKind classifies why a scan result could not be parsed.
type ParseKind string

const (
	ParseRootRequired ParseKind = "root-privileges-required"
	ParseUnknown      ParseKind = "unknown"
)

var rootPattern = regexp.MustCompile(`[rR][oO0]{2}[tT]`)

// ClassifyParseFailure inspects the scanner's error text. Any mention of
// root (including the "r00t" spelling) means the scan needed privileges.
func ClassifyParseFailure(text string) ParseKind {
	if rootPattern.MatchString(text) {
		return ParseRootRequired
	}
	return ParseUnknown
}

// ParseError is returned when scan output cannot be turned into results.
type ParseError struct {
	Kind   ParseKind
	Output string
	Cause  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Kind == ParseRootRequired {
		return fmt.Sprintf("[%s] scan requires root privileges", CodeRootRequired)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] could not parse scan result: %v", CodeParseFailed, e.Cause)
	}
	return fmt.Sprintf("[%s] could not parse scan result", CodeParseFailed)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Code maps the parse kind onto an error code.
func (e *ParseError) Code() ErrorCode {
	if e.Kind == ParseRootRequired {
		return CodeRootRequired
	}
	return CodeParseFailed
}

// NewParseError classifies output and wraps cause. When output is empty
// the cause text is used for classification instead.
func NewParseError(output string, cause error) *ParseError {
	text := output
	if strings.TrimSpace(text) == "" && cause != nil {
		text = cause.Error()
	}
	return &ParseError{
		Kind:   ClassifyParseFailure(text),
		Output: output,
		Cause:  cause,
	}
}

// ProcessError reports a failure at the scanner process boundary.
type ProcessError struct {
	Code        ErrorCode
	Message     string
	Executable  string
	SearchPaths []string
	Cause       error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.Code == CodeProcessSpawn && len(e.SearchPaths) > 0 {
		return fmt.Sprintf("[%s] %s: %s not found in %s",
			e.Code, e.Message, e.Executable, strings.Join(e.SearchPaths, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// Describe renders the user-facing explanation of a spawn failure,
// naming PATH and the extra directories that were searched.
func (e *ProcessError) Describe(pathEntries, extra []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s was not found. The PATH environment variable is\n  %s",
		e.Executable, strings.Join(pathEntries, string(filepath.ListSeparator)))
	switch len(extra) {
	case 0:
	case 1:
		fmt.Fprintf(&b, "\nplus the extra directory\n  %s", extra[0])
	default:
		fmt.Fprintf(&b, "\nplus the extra directories\n  %s", strings.Join(extra, string(filepath.ListSeparator)))
	}
	return b.String()
}

// NewSpawnError creates an error for an executable that could not be started.
func NewSpawnError(executable string, searchPaths []string, cause error) *ProcessError {
	return &ProcessError{
		Code:        CodeProcessSpawn,
		Message:     "failed to start scanner",
		Executable:  executable,
		SearchPaths: searchPaths,
		Cause:       cause,
	}
}

// NewPollError creates an error for a process handle that became invalid.
func NewPollError(message string, cause error) *ProcessError {
	return &ProcessError{
		Code:    CodeProcessPoll,
		Message: message,
		Cause:   cause,
	}
}

// ScanError represents a rejected or aborted scan request.
type ScanError struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{Code: code, Message: message}
}

// DatabaseError represents database-related errors.
type DatabaseError struct {
	Code      ErrorCode
	Message   string
	Operation string
	Query     string
	Cause     error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("[%s] %s (operation: %s)", e.Code, e.Message, e.Operation)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// WithOperation records which repository call failed.
func (e *DatabaseError) WithOperation(op string) *DatabaseError {
	e.Operation = op
	return e
}

// NewDatabaseError creates a new database error.
func NewDatabaseError(code ErrorCode, message string) *DatabaseError {
	return &DatabaseError{Code: code, Message: message}
}

// WrapDatabaseError wraps an existing error as a database error.
func WrapDatabaseError(code ErrorCode, message string, err error) *DatabaseError {
	return &DatabaseError{Code: code, Message: message, Cause: err}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{Code: code, Message: message, Field: field, Value: value}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{Code: code, Message: message, Cause: err}
}

// GetCode extracts the error code from anywhere in err's chain.
func GetCode(err error) ErrorCode {
	var (
		pe *ParseError
		pr *ProcessError
		se *ScanError
		de *DatabaseError
		ce *ConfigError
	)
	switch {
	case stderrors.As(err, &pe):
		return pe.Code()
	case stderrors.As(err, &pr):
		return pr.Code
	case stderrors.As(err, &se):
		return se.Code
	case stderrors.As(err, &de):
		return de.Code
	case stderrors.As(err, &ce):
		return ce.Code
	}
	return CodeUnknown
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// ErrEmptyCommand is returned when a scan is started without a command.
func ErrEmptyCommand() *ScanError {
	return NewScanError(CodeEmptyCommand, "empty nmap command")
}

// ErrNoTarget is returned when the command still carries the target placeholder.
func ErrNoTarget() *ScanError {
	return NewScanError(CodeNoTarget, "no target host")
}

// ErrScanAborted is returned when the user declines to stop a running scan.
func ErrScanAborted() *ScanError {
	return NewScanError(CodeScanAborted, "scan has not finished yet")
}

// ErrInvalidState is returned when an operation is not allowed in the current tab state.
func ErrInvalidState(op, state string) *ScanError {
	return NewScanError(CodeInvalidState, fmt.Sprintf("cannot %s while %s", op, state))
}

// ErrNotFound creates an error for a missing tab, host or archive entry.
func ErrNotFound(what, id string) *ScanError {
	return &ScanError{Code: CodeNotFound, Message: what + " not found", Target: id}
}
