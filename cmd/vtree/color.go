package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	vterrors "github.com/vango-dev/vtree/internal/errors"
)

var (
	greenFg   = color.New(color.FgGreen)
	redFg     = color.New(color.FgRed)
	yellowFg  = color.New(color.FgYellow)
	cyanFg    = color.New(color.FgCyan)
	magentaFg = color.New(color.FgMagenta)
	grayFg    = color.New(color.FgHiBlack)
)

// colorEnabled controls whether command output is colored.
var colorEnabled bool

// setupColor enables color when w is a terminal and color was not turned
// off with --no-color or NO_COLOR.
func setupColor(w io.Writer, disable bool) {
	colorEnabled = !disable && os.Getenv("NO_COLOR") == "" && isTerminal(w)
	if disable {
		vterrors.DisableColors()
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(c *color.Color, text string) string {
	if !colorEnabled {
		return text
	}
	c.EnableColor()
	return c.Sprint(text)
}
