package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes.
const (
	ExitSuccess      = 0 // every requested check proved
	ExitFailure      = 1 // a check produced a counterexample
	ExitCommandError = 2 // bad arguments, missing files, solver failure
)

// ExitError carries an exit code alongside the error message.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with a code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an underlying error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to
// ExitCommandError for errors without one.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Formatter renders command output as text or JSON.
type Formatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Response is the JSON envelope for command output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error half of a Response.
type ResponseError struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON reports whether the formatter is in JSON mode.
func (f *Formatter) JSON() bool {
	return f.Format == "json"
}

// Success renders a successful result. In text mode data is printed with
// its natural formatting.
func (f *Formatter) Success(data any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error renders an error result.
func (f *Formatter) Error(message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Message: message, Details: details},
		})
	}
	if _, err := fmt.Fprintf(f.Writer, "error: %s\n", message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		_, err := fmt.Fprintf(f.Writer, "details: %v\n", details)
		return err
	}
	return nil
}

// renderError reports a command failure through the formatter, so JSON
// consumers get a structured envelope instead of a bare stderr line, then
// passes the error through for exit-code handling.
func renderError(f *Formatter, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		_ = f.Error(exitErr.Message, exitErr.Err.Error())
	} else {
		_ = f.Error(err.Error(), nil)
	}
	return err
}

// VerboseLog prints a diagnostic line when verbose mode is on. Diagnostics
// go to ErrWriter so JSON output stays parseable.
func (f *Formatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
