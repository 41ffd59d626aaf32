package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hogtail/hogtail/internal/logs"
)

// Color palette - using ANSI 256 colors for broad terminal support
var (
	ColorCyan    = lipgloss.Color("6")
	ColorYellow  = lipgloss.Color("3")
	ColorRed     = lipgloss.Color("1")
	ColorGreen   = lipgloss.Color("2")
	ColorBlue    = lipgloss.Color("4")
	ColorMagenta = lipgloss.Color("5")
	ColorGray    = lipgloss.Color("8")
	ColorWhite   = lipgloss.Color("15")
	ColorBlack   = lipgloss.Color("0")
)

// Text styles
var (
	// Timestamps in log output
	TimestampStyle = lipgloss.NewStyle().Foreground(ColorCyan)

	// Invocation instance identifiers
	InstanceStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// Status messages ("Polling...", "Fetching older entries...")
	StatusStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	// Error messages
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)

	// Warning messages
	WarningStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// Success messages
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	// Muted/secondary text
	MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// Highlighted/matched text
	HighlightStyle = lipgloss.NewStyle().
			Background(ColorYellow).
			Foreground(ColorBlack).
			Bold(true)

	// Labels (field names, headers)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// Context lines (remaining entries of a collapsed group)
	ContextStyle = lipgloss.NewStyle().Foreground(ColorGray)
)

// Per-level styles for the log level column.
var levelStyles = map[logs.Level]lipgloss.Style{
	logs.LevelDebug:   lipgloss.NewStyle().Foreground(ColorGray),
	logs.LevelLog:     lipgloss.NewStyle().Foreground(ColorWhite),
	logs.LevelInfo:    lipgloss.NewStyle().Foreground(ColorBlue),
	logs.LevelWarning: lipgloss.NewStyle().Foreground(ColorYellow),
	logs.LevelError:   lipgloss.NewStyle().Foreground(ColorRed).Bold(true),
}

// LevelStyle returns the style for a log level.
func LevelStyle(level logs.Level) lipgloss.Style {
	if s, ok := levelStyles[level]; ok {
		return s
	}
	return MutedStyle
}

// Box styles for sections
var (
	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan).
				MarginBottom(1)

	GroupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorMagenta)
)
