package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/reoring/typeconv"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // values are valid
	ExitFailure      = 1 // validation failed
	ExitCommandError = 2 // unreadable files, bad specifications, database errors
)

// ExitError carries the process exit code for an error.
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

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, ExitFailure by default.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5555"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	codeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// Response is the JSON output envelope.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError describes a failed command in JSON output.
type ResponseError struct {
	Message string       `json:"message"`
	Issues  []IssueEntry `json:"issues,omitempty"`
}

// IssueEntry is one validation issue in JSON output.
type IssueEntry struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success prints a valid result. title is shown in text mode only.
func (f *OutputFormatter) Success(title string, data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, okStyle.Render("✓ "+title))
	if data == nil {
		return nil
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(f.Writer, string(out))
	return nil
}

// Issues prints validation issues and returns the ExitFailure error.
func (f *OutputFormatter) Issues(title string, iss typeconv.Issues) error {
	entries := make([]IssueEntry, len(iss))
	for i, it := range iss {
		entries[i] = IssueEntry{Path: it.Path, Code: it.Code, Message: it.Message}
	}
	if f.Format == "json" {
		if err := json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Message: title, Issues: entries},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(f.Writer, failStyle.Render("✗ "+title))
		for _, e := range entries {
			fmt.Fprintf(f.Writer, "  %s %s: %s\n", pathStyle.Render(e.Path), codeStyle.Render("["+e.Code+"]"), e.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s (%d issues)", title, len(iss)))
}

// Fail reports err as validation issues when it carries any, and as a
// command error otherwise.
func (f *OutputFormatter) Fail(title string, err error) error {
	if iss, ok := typeconv.AsIssues(err); ok {
		return f.Issues(title, iss)
	}
	if f.Format == "json" {
		if encErr := json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Message: title + ": " + err.Error()},
		}); encErr != nil {
			return encErr
		}
	}
	return WrapExitError(ExitCommandError, title, err)
}
