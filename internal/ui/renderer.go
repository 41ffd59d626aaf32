package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hogtail/hogtail/internal/logs"
)

// Renderer handles all terminal output with consistent styling.
type Renderer struct {
	out       io.Writer
	err       io.Writer
	noColor   bool
	quiet     bool
	highlight *regexp.Regexp
}

// NewRenderer creates a new Renderer with default settings.
func NewRenderer() *Renderer {
	return &Renderer{
		out: os.Stdout,
		err: os.Stderr,
	}
}

// Option is a functional option for configuring the Renderer.
type Option func(*Renderer)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithError sets the error writer.
func WithError(w io.Writer) Option {
	return func(r *Renderer) {
		r.err = w
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) Option {
	return func(r *Renderer) {
		r.noColor = noColor
	}
}

// WithQuiet enables quiet mode (suppresses status messages).
func WithQuiet(quiet bool) Option {
	return func(r *Renderer) {
		r.quiet = quiet
	}
}

// WithHighlight sets a pattern to highlight in log messages.
func WithHighlight(pattern string) Option {
	return func(r *Renderer) {
		if pattern != "" {
			r.highlight, _ = regexp.Compile("(?i)(" + regexp.QuoteMeta(pattern) + ")")
		}
	}
}

// NewRendererWithOptions creates a new Renderer with the given options.
func NewRendererWithOptions(opts ...Option) *Renderer {
	r := NewRenderer()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// render applies styling if color is enabled.
func (r *Renderer) render(style lipgloss.Style, text string) string {
	if r.noColor {
		return text
	}
	return style.Render(text)
}

// --- Status and Messages ---

// Status prints a status message (suppressed in quiet mode).
func (r *Renderer) Status(format string, args ...any) {
	if r.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(StatusStyle, msg))
}

// Info prints an informational message.
func (r *Renderer) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, msg)
}

// Success prints a success message.
func (r *Renderer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, r.render(SuccessStyle, msg))
}

// Warning prints a warning message.
func (r *Renderer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(WarningStyle, "Warning: "+msg))
}

// Error prints an error message.
func (r *Renderer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(ErrorStyle, "Error: "+msg))
}

// Debug prints a debug message (only when verbose).
func (r *Renderer) Debug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(MutedStyle, "[DEBUG] "+msg))
}

// --- Formatted Output ---

// KeyValue prints a key-value pair.
func (r *Renderer) KeyValue(key, value string) {
	label := r.render(LabelStyle, key+":")
	fmt.Fprintf(r.out, "%s %s\n", label, value)
}

// KeyValueIndent prints an indented key-value pair.
func (r *Renderer) KeyValueIndent(key, value string, indent int) {
	prefix := strings.Repeat("  ", indent)
	label := r.render(LabelStyle, key+":")
	fmt.Fprintf(r.out, "%s%s %s\n", prefix, label, value)
}

// Section prints a section title.
func (r *Renderer) Section(title string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.render(SectionTitleStyle, title))
}

// Newline prints a blank line.
func (r *Renderer) Newline() {
	fmt.Fprintln(r.out)
}

// --- Log Rendering ---

const timestampLayout = "2006-01-02 15:04:05.000"

// LogEntry renders one invocation log line.
func (r *Renderer) LogEntry(entry logs.LogEntry) {
	ts := r.render(TimestampStyle, entry.Timestamp.Format(timestampLayout))
	level := r.render(LevelStyle(entry.Level), fmt.Sprintf("%-7s", entry.Level))
	instance := r.render(InstanceStyle, shortInstance(entry.InstanceID))

	displayMsg := entry.Message
	if r.highlight != nil && !r.noColor {
		displayMsg = r.highlight.ReplaceAllStringFunc(entry.Message, func(match string) string {
			return HighlightStyle.Render(match)
		})
	}

	lines := strings.Split(displayMsg, "\n")
	fmt.Fprintf(r.out, "%s  %s  %s  %s\n", ts, level, instance, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(r.out, "%s  %s\n", strings.Repeat(" ", len(timestampLayout)), line)
	}
}

// LogGroup renders a grouped invocation. Collapsed groups show the
// header and entry count only; expanded groups list every entry.
func (r *Renderer) LogGroup(group logs.GroupedLogEntry, expanded bool) {
	header := fmt.Sprintf("%s  %s  %d entries",
		group.MinTimestamp.Format(timestampLayout),
		shortInstance(group.InstanceID),
		len(group.Entries))
	level := r.render(LevelStyle(group.LogLevel), fmt.Sprintf("%-7s", group.LogLevel))
	fmt.Fprintf(r.out, "%s %s %s\n", r.render(GroupHeaderStyle, "â–¸"), level, header)

	if !expanded {
		return
	}
	for _, entry := range group.Entries {
		fmt.Fprint(r.out, "  ")
		r.LogEntry(entry)
	}
}

// HiddenBanner announces buffered new entries waiting to be revealed.
func (r *Renderer) HiddenBanner(count int) {
	if count <= 0 || r.quiet {
		return
	}
	noun := "entries"
	if count == 1 {
		noun = "entry"
	}
	fmt.Fprintln(r.err, r.render(StatusStyle, fmt.Sprintf("%d new %s", count, noun)))
}

// NoResults prints a "no results" message.
func (r *Renderer) NoResults() {
	fmt.Fprintln(r.out, r.render(MutedStyle, "No results found."))
}

// --- Table Rendering ---

// Table renders a simple table.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = r.render(LabelStyle, fmt.Sprintf("%-*s", widths[i], h))
	}
	fmt.Fprintln(r.out, strings.Join(headerParts, "  "))

	sepParts := make([]string, len(headers))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(r.out, r.render(MutedStyle, strings.Join(sepParts, "  ")))

	for _, row := range rows {
		rowParts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rowParts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(r.out, strings.Join(rowParts, "  "))
	}
}

// shortInstance trims a UUID instance id to its first segment for
// display. Full ids stay available via JSON output.
func shortInstance(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && len(id) >= 36 {
		return id[:i]
	}
	return id
}
