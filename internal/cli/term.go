package cli

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/matzehuels/gridview/pkg/grid"
)

// terminalSize returns the size of the terminal on stdout in cells, and
// false when stdout is not a terminal.
func terminalSize() (grid.Size, bool) {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) {
		return grid.Size{}, false
	}
	w, h, err := term.GetSize(int(fd))
	if err != nil || w <= 0 || h <= 0 {
		return grid.Size{}, false
	}
	return grid.Size{Width: float64(w), Height: float64(h)}, true
}

// viewportFor is the viewport of an interactive view: the terminal minus
// the status line, unless the flags fix it.
func viewportFor(f configFlags, fallback grid.Size) grid.Size {
	size := fallback
	if ts, ok := terminalSize(); ok {
		size = grid.Size{Width: ts.Width, Height: max(ts.Height-statusLines, 1)}
	}
	if f.width > 0 {
		size.Width = f.width
	}
	if f.height > 0 {
		size.Height = f.height
	}
	return size
}
