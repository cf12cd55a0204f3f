package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/streakline/internal/logger"
)

// ErrInvalidInput marks errors caused by malformed user or caller input,
// such as an unparseable day. Commands failing with it exit with code 2.
var ErrInvalidInput = stderrors.New("invalid input")

const (
	exitFailure = 1
	exitUsage   = 2
)

// Invalidf returns an error wrapping ErrInvalidInput
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsInvalidInput reports whether err was caused by invalid input
func IsInvalidInput(err error) bool {
	return stderrors.Is(err, ErrInvalidInput)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsInvalidInput(err):
		return exitUsage
	default:
		return exitFailure
	}
}

// Fatal logs an error and exits the program. Nil errors are ignored.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(ExitCode(err))
}
