package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/xplshn/svimport/pkg/token"
)

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorReset  = "\033[0m"
)

// Render prints every diagnostic in b as
//
//	file:line:col: error: message
//	  source line
//	  ^~~~
//
// followed by a one-line summary when anything was reported.
func Render(w io.Writer, b *Bag, color bool) {
	for _, d := range b.Diagnostics() {
		renderOne(w, b, d, color)
	}
	errs, warns := b.ErrorCount(), b.WarningCount()
	if errs == 0 && warns == 0 {
		return
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s) generated.\n", errs, warns)
}

func renderOne(w io.Writer, b *Bag, d *Diagnostic, color bool) {
	filename := "unknown"
	if f, ok := b.file(d.Pos.FileIndex); ok {
		filename = f.Name
	}

	label := d.Severity.String() + ":"
	if color {
		label = severityColor(d.Severity) + label + colorReset
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s", filename, d.Pos.Line, d.Pos.Column, label, d.Message)
	if d.Flag != "" {
		fmt.Fprintf(w, " [-W%s]", d.Flag)
	}
	fmt.Fprintln(w)
	printSourceLine(w, b, d.Pos, color)
}

func severityColor(s Severity) string {
	switch s {
	case Error:
		return colorRed
	case Warning:
		return colorYellow
	}
	return colorCyan
}

// printSourceLine prints the source line and a caret indicating the position
func printSourceLine(w io.Writer, b *Bag, pos token.Pos, color bool) {
	f, ok := b.file(pos.FileIndex)
	if !ok || !pos.IsValid() {
		return
	}

	content := f.Content
	lineNum := pos.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}
	if lineNum > 1 {
		return
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(w, "  %s\n", string(content[lineStart:lineEnd]))

	col := pos.Column
	if col < 1 {
		col = 1
	}
	caret := "^"
	if pos.Len > 1 {
		caret += strings.Repeat("~", pos.Len-1)
	}
	if color {
		caret = colorGreen + caret + colorReset
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", col-1), caret)
}
