package errors

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	redBold   = color.New(color.FgRed, color.Bold)
	whiteBold = color.New(color.FgWhite, color.Bold)
	cyanFg    = color.New(color.FgCyan)
	grayFg    = color.New(color.FgHiBlack)
	redFg     = color.New(color.FgRed)
)

// colorEnabled follows stderr, where the CLI prints errors.
var colorEnabled = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

// DisableColors turns off ANSI colors in Format and PrintError.
func DisableColors() { colorEnabled = false }

// EnableColors turns ANSI colors back on.
func EnableColors() { colorEnabled = true }

func paint(c *color.Color, text string) string {
	if !colorEnabled {
		return text
	}
	c.EnableColor()
	return c.Sprint(text)
}

// detailWidth is where Detail text wraps.
const detailWidth = 70

// Format renders the error for a terminal: a headline, then whichever of
// path, source excerpt, detail, cause and hint are set.
func (e *VTreeError) Format() string {
	var b strings.Builder

	b.WriteString("\n" + paint(redBold, "ERROR"))
	if e.Code != "" {
		b.WriteString(paint(redBold, " ") + paint(whiteBold, e.Code))
	}
	b.WriteString(": " + e.Message + "\n\n")

	if e.Path != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", paint(grayFg, "at"), paint(cyanFg, e.Path))
	}
	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", paint(cyanFg, e.Location.String()))
		e.writeExcerpt(&b)
	}
	if lines := wrapText(e.Detail, detailWidth); len(lines) > 0 {
		for _, line := range lines {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s %s\n\n", paint(grayFg, "Cause:"), e.Wrapped)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n", paint(cyanFg, "Hint:"), e.Suggestion)
	}
	return b.String()
}

// writeExcerpt prints the Context lines centred on the error line, with a
// caret under the column when one is known.
func (e *VTreeError) writeExcerpt(b *strings.Builder) {
	if len(e.Context) == 0 {
		return
	}
	first := max(e.Location.Line-len(e.Context)/2, 1)
	bar := paint(grayFg, " │ ")
	for i, line := range e.Context {
		n := first + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, bar, line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", paint(redFg, "→ "), n, bar, line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n", paint(grayFg, "│ "),
				strings.Repeat(" ", e.Location.Column-1), paint(redFg, "^"))
		}
	}
	b.WriteString("\n")
}

// FormatCompact renders the error on one line, compiler style:
// "file:line:col: CODE: message at /path".
func (e *VTreeError) FormatCompact() string {
	var parts []string
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	msg := e.Message
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return strings.Join(append(parts, msg), ": ")
}

// wrapText breaks text into lines of at most width bytes. Words longer
// than width get a line of their own.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// PrintError writes err to w, in full when it is or wraps a *VTreeError.
func PrintError(w io.Writer, err error) {
	var ve *VTreeError
	if errors.As(err, &ve) {
		fmt.Fprint(w, ve.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(redBold, "ERROR:"), err)
}
