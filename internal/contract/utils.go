package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	BoldColor = color.New(color.Bold)
	StepColor = color.New(color.FgGreen)
	WarnColor = color.New(color.FgYellow)
)

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = WarnColor.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// StepDone prints a completed-step progress line.
func StepDone(format string, args ...any) {
	_, _ = StepColor.Printf("✔ "+format+"\n", args...)
}

// StepSkip prints a skipped-step progress line.
func StepSkip(format string, args ...any) {
	fmt.Printf("- "+format+"\n", args...)
}

// Bold prints a bold section heading.
func Bold(format string, args ...any) {
	_, _ = BoldColor.Printf(format+"\n", args...)
}
