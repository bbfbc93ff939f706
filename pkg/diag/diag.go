package diag

import (
	"fmt"
	"strings"

	"github.com/FrederikTobner/slang/pkg/span"
)

// Diagnostic is a single structured error or warning anchored to a source
// span. Compile-time diagnostics are collected into a Bag; a runtime
// Diagnostic is returned directly as an error from the VM's outer entry
// point (spec.md §9).
type Diagnostic struct {
	Code    Code
	Message string
	Span    span.Span
	Path    string
}

func New(code Code, message string, sp span.Span) *Diagnostic {
	return &Diagnostic{Code: code, Message: message, Span: sp}
}

func Newf(code Code, sp span.Span, format string, args ...any) *Diagnostic {
	return New(code, fmt.Sprintf(format, args...), sp)
}

// Error implements the error interface so a *Diagnostic can be returned
// directly from the VM or wrapped by compiler.Compile.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[E%04d] %s", uint16(d.Code), d.Message)
}

// Render produces the user-visible multi-line format from spec.md §7:
//
//	error[E<code>]: <message>
//	 --> <path>:<line>:<col>
//	  |
//	N | <source line>
//	  | <caret(s) ^^^ under the offending span>
func (d *Diagnostic) Render(src []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error[E%04d]: %s\n", uint16(d.Code), d.Message)
	path := d.Path
	if path == "" {
		path = "<source>"
	}
	fmt.Fprintf(&b, " --> %s:%d:%d\n", path, d.Span.Start.Line, d.Span.Start.Col)
	b.WriteString("  |\n")

	line := sourceLine(src, d.Span.Start.Line)
	fmt.Fprintf(&b, "%d | %s\n", d.Span.Start.Line, line)

	caretCount := d.Span.End.Col - d.Span.Start.Col
	if d.Span.End.Line != d.Span.Start.Line || caretCount < 1 {
		caretCount = 1
	}
	gutter := fmt.Sprintf("%d", d.Span.Start.Line)
	b.WriteString(strings.Repeat(" ", len(gutter)))
	b.WriteString(" | ")
	b.WriteString(strings.Repeat(" ", d.Span.Start.Col-1))
	b.WriteString(strings.Repeat("^", caretCount))
	b.WriteString("\n")
	return b.String()
}

func sourceLine(src []byte, line int) string {
	if line < 1 {
		return ""
	}
	cur := 1
	start := 0
	for i, c := range src {
		if cur == line && start == 0 && (i == 0 || src[i-1] == '\n') {
			start = i
		}
		if c == '\n' {
			if cur == line {
				return string(src[start:i])
			}
			cur++
		}
	}
	if cur == line {
		return string(src[start:])
	}
	return ""
}

// Bag accumulates diagnostics across the compilation phases that share it.
// Per spec.md §7's propagation rule, the driver checks it after each
// phase, and a non-empty bag halts the pipeline before the next phase runs.
type Bag struct {
	items []*Diagnostic
	path  string
}

func NewBag(path string) *Bag {
	return &Bag{path: path}
}

func (b *Bag) Add(d *Diagnostic) {
	d.Path = b.path
	b.items = append(b.items, d)
}

func (b *Bag) Addf(code Code, sp span.Span, format string, args ...any) {
	b.Add(Newf(code, sp, format, args...))
}

func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

func (b *Bag) Diagnostics() []*Diagnostic { return b.items }

// Render renders every diagnostic in the bag against src, concatenated.
func (b *Bag) Render(src []byte) string {
	var sb strings.Builder
	for _, d := range b.items {
		sb.WriteString(d.Render(src))
	}
	return sb.String()
}

// Err returns a single error summarizing the bag, or nil if it is empty.
func (b *Bag) Err() error {
	if !b.HasErrors() {
		return nil
	}
	return &BagError{Bag: b}
}

// BagError adapts a non-empty Bag to the error interface for the compiler
// driver boundary (spec.md §9: a single error synthesized only at the
// driver, never per-diagnostic).
type BagError struct {
	Bag *Bag
}

func (e *BagError) Error() string {
	var sb strings.Builder
	for i, d := range e.Bag.items {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(d.Error())
	}
	return sb.String()
}
