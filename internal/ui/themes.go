package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for UI output.
// Each field contains an ANSI escape code for the corresponding color category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the main accent color for important elements.
	Primary string
	// Secondary is used for less prominent elements.
	Secondary string
	// Success marks settled calls that returned a value.
	Success string
	// Warning marks substituted fallbacks and dropped slots.
	Warning string
	// Error marks failed calls and aggregates.
	Error string
	// Info is used for informational messages.
	Info string
	// Bold is the escape code for bold text.
	Bold string
	// Underline is the escape code for underlined text.
	Underline string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Info:      "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Info:      "\033[38;5;54m",  // Dark purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or --no-color flag is provided.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// TableStyles holds the lipgloss styles of the outcome table.
type TableStyles struct {
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Dim     lipgloss.Style
}

var (
	darkTableStyles = TableStyles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).PaddingRight(2),
		Cell:    lipgloss.NewStyle().PaddingRight(2),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("82")).PaddingRight(2),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).PaddingRight(2),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingRight(2),
	}

	lightTableStyles = TableStyles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27")).PaddingRight(2),
		Cell:    lipgloss.NewStyle().PaddingRight(2),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("28")).PaddingRight(2),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("124")).PaddingRight(2),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")).PaddingRight(2),
	}

	// plainTableStyles keep the column padding but render no escape codes.
	plainTableStyles = TableStyles{
		Header:  lipgloss.NewStyle().PaddingRight(2),
		Cell:    lipgloss.NewStyle().PaddingRight(2),
		Success: lipgloss.NewStyle().PaddingRight(2),
		Failure: lipgloss.NewStyle().PaddingRight(2),
		Dim:     lipgloss.NewStyle().PaddingRight(2),
	}
)

// GetTableStyles returns the table styles matching the active theme.
func GetTableStyles() TableStyles {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	switch currentTheme.Name {
	case "none":
		return plainTableStyles
	case "light":
		return lightTableStyles
	default:
		return darkTableStyles
	}
}

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name.
// Valid names are: "dark", "light", "none". Unknown names default to dark.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/).
// FANOUT_THEME selects "light" or "dark" when colors are enabled.
//
// Parameters:
//   - noColor: If true, disables all color output regardless of environment.
func InitTheme(noColor bool) {
	if noColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	// Any value, even empty, disables colors (per no-color.org)
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv("FANOUT_THEME"))
}
