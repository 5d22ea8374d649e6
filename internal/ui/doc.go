// Package ui provides theme and color support for the CLI output.
// It defines ANSI color schemes for inline text and lipgloss styles for the
// per-call outcome table, switched together by InitTheme.
package ui
