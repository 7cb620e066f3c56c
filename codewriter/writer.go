// Package codewriter accumulates indented source lines.
package codewriter

import (
	"bytes"
	"fmt"
	"strings"
)

// Writer buffers lines at the current indentation depth.
type Writer struct {
	buf    bytes.Buffer
	indent string
	depth  int
}

// New returns a writer that indents with unit (for example two spaces or
// a tab) per level.
func New(unit string) *Writer {
	return &Writer{indent: unit}
}

// Spaces returns a writer indenting with n spaces per level.
func Spaces(n int) *Writer {
	return New(strings.Repeat(" ", n))
}

// WriteLine writes one line at the current depth. An empty line is
// written without indentation.
func (w *Writer) WriteLine(line string) {
	if line != "" {
		for range w.depth {
			w.buf.WriteString(w.indent)
		}
		w.buf.WriteString(line)
	}
	w.buf.WriteByte('\n')
}

// Linef formats and writes one line.
func (w *Writer) Linef(format string, args ...any) {
	w.WriteLine(fmt.Sprintf(format, args...))
}

// WriteLines writes each line at the current depth.
func (w *Writer) WriteLines(lines ...string) {
	for _, l := range lines {
		w.WriteLine(l)
	}
}

// IncreaseIndent nests subsequent lines one level deeper.
func (w *Writer) IncreaseIndent() { w.depth++ }

// DecreaseIndent undoes one IncreaseIndent. It never goes below zero.
func (w *Writer) DecreaseIndent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Depth returns the current nesting level.
func (w *Writer) Depth() int { return w.depth }

// StartBlock writes the opening line of a block and indents.
func (w *Writer) StartBlock(line string) {
	w.WriteLine(line)
	w.IncreaseIndent()
}

// CloseBlock dedents and writes the closing line of a block. An empty
// closing line defaults to "}".
func (w *Writer) CloseBlock(line string) {
	w.DecreaseIndent()
	if line == "" {
		line = "}"
	}
	w.WriteLine(line)
}

// Scratch returns an empty writer with the same indentation unit and
// depth. Emitters render into a scratch writer and Append it only once an
// element rendered without error.
func (w *Writer) Scratch() *Writer {
	return &Writer{indent: w.indent, depth: w.depth}
}

// Append copies the content of other to w.
func (w *Writer) Append(other *Writer) {
	w.buf.Write(other.buf.Bytes())
}

// Len returns the number of buffered bytes.
func (w *Writer) Len() int { return w.buf.Len() }

// String returns the buffered text.
func (w *Writer) String() string { return w.buf.String() }

// Bytes returns the buffered text.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
