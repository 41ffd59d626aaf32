// Package output formats log entries, groups and function listings for
// the terminal or for export (text, JSON, CSV).
package output

import (
	"io"
	"regexp"
	"strings"

	"github.com/hogtail/hogtail/internal/ui"
)

// Format specifies the output format type.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Valid reports whether the format name is one we can produce.
func (f Format) Valid() bool {
	switch f {
	case FormatText, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// Formatter handles output formatting for different formats.
type Formatter struct {
	format    Format
	writer    io.Writer
	highlight *regexp.Regexp
	renderer  *ui.Renderer
}

// NewFormatter creates a new formatter with the specified format.
func NewFormatter(format string, writer io.Writer, opts ...ui.Option) *Formatter {
	opts = append([]ui.Option{ui.WithOutput(writer)}, opts...)
	return &Formatter{
		format:   Format(format),
		writer:   writer,
		renderer: ui.NewRendererWithOptions(opts...),
	}
}

// WithHighlight sets a literal term to highlight in text output.
func (f *Formatter) WithHighlight(term string) *Formatter {
	if term != "" {
		f.highlight, _ = regexp.Compile("(?i)(" + regexp.QuoteMeta(term) + ")")
	}
	return f
}

// truncateMessage flattens newlines and truncates to maxLen characters.
func truncateMessage(msg string, maxLen int) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", "")
	if len(msg) > maxLen {
		return msg[:maxLen] + "..."
	}
	return msg
}
