// Package utils provides terminal output helpers for the CLI
package utils

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/tildaslashalef/reviewgate/internal/review"
)

var (
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgBlue)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	subtleColor  = color.New(color.FgHiBlack)
)

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	successColor.Fprintf(os.Stdout, "✓ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	infoColor.Fprintf(os.Stdout, "• %s\n", msg)
}

// PrintWarning prints a warning message
func PrintWarning(msg string) {
	warningColor.Fprintf(os.Stdout, "! %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// PrintSubtle prints de-emphasized detail text
func PrintSubtle(msg string) {
	subtleColor.Fprintf(os.Stdout, "  %s\n", msg)
}

// PrintVerdict prints the gate outcome in the appropriate color.
func PrintVerdict(blocked bool, risk review.Risk) {
	if blocked {
		errorColor.Fprintf(os.Stdout, "BLOCKED")
	} else {
		successColor.Fprintf(os.Stdout, "PASSED")
	}
	fmt.Fprintf(os.Stdout, " (overall risk: %s)\n", risk)
}

// RenderMarkdown renders markdown for terminal display. It falls back
// to the raw text when styling fails.
func RenderMarkdown(markdown string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
