package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/patterns"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected request (validation, unknown id)
	ExitCommandError = 2 // Bad flags, configuration or startup failure
	ExitUnavailable  = 3 // Server or store temporarily unavailable
)

// ExitError represents an error with a specific exit code.
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

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that carry no
// code are classified by kind.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if models.IsTransient(err) || patterns.IsRejection(err) {
		return ExitUnavailable
	}
	return ExitFailure
}

// Describe renders err for a terminal, one validation issue per line.
func Describe(err error) string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		var b strings.Builder
		b.WriteString("request rejected:")
		for _, issue := range verr.Issues {
			fmt.Fprintf(&b, "\n  %s: %s", issue.Field, issue.Message)
		}
		return b.String()
	}
	if errors.Is(err, models.ErrNotFound) {
		return strings.TrimSuffix(err.Error(), ": "+models.ErrNotFound.Error())
	}
	return err.Error()
}

// printer writes command results as JSON or as aligned text.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) jsonMode() bool { return p.format == "json" }

func (p printer) json(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints rows under header with tab-aligned columns.
func (p printer) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (p printer) line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// rupees formats an amount the way the storefront displays prices.
func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}
