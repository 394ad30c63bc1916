// Package bufwriter provides the line-oriented output buffer of the renderers.
package bufwriter

import (
	"fmt"
	"strings"
)

// DefaultIndent is one indentation level.
const DefaultIndent = "  "

// Writer accumulates rendered lines with an indentation level. The zero
// value is ready to use and indents with DefaultIndent.
type Writer struct {
	buf    strings.Builder
	level  int
	indent string
}

// SetIndentUnit changes the text written per indentation level.
func (w *Writer) SetIndentUnit(unit string) {
	w.indent = unit
}

func (w *Writer) unit() string {
	if w.indent == "" {
		return DefaultIndent
	}
	return w.indent
}

// Indent increases the indentation level.
func (w *Writer) Indent() {
	w.level++
}

// Dedent decreases the indentation level. It never goes below zero.
func (w *Writer) Dedent() {
	if w.level > 0 {
		w.level--
	}
}

// Level returns the current indentation level.
func (w *Writer) Level() int {
	return w.level
}

// WriteLinef writes one formatted, indented line.
func (w *Writer) WriteLinef(format string, args ...any) {
	w.WriteLine(fmt.Sprintf(format, args...))
}

// WriteLine writes one indented line. Embedded newlines start new lines at
// the same indentation; empty lines are not indented.
func (w *Writer) WriteLine(line string) {
	prefix := strings.Repeat(w.unit(), w.level)
	for _, l := range strings.Split(line, "\n") {
		if l != "" {
			w.buf.WriteString(prefix)
			w.buf.WriteString(l)
		}
		w.buf.WriteByte('\n')
	}
}

// WriteString writes s unchanged.
func (w *Writer) WriteString(s string) {
	w.buf.WriteString(s)
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.buf.String()
}

// Reset clears the buffer and the indentation level.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.level = 0
}
