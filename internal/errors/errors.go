package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tracked/internal/logger"
)

// Public is implemented by errors whose message is safe to show to the user
// verbatim, such as an error message returned by the server.
type Public interface {
	error
	PublicMessage() string
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Message returns the user-facing message for err. A Public error anywhere in
// the chain wins; otherwise fallback is returned, or err's own text when
// fallback is empty.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var pub Public
	if stderrors.As(err, &pub) {
		if msg := pub.PublicMessage(); msg != "" {
			return msg
		}
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
