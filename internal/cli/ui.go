package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gridview/pkg/pipeline"
	"github.com/matzehuels/gridview/pkg/snapshot"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, selection
	colorYellow = lipgloss.Color("220") // Amber - warnings, editing
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints run statistics on a single line.
func printStats(w io.Writer, s pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d rows", s.Rows),
		fmt.Sprintf("%d realized", s.Realized),
		fmt.Sprintf("%d allocated", s.Allocated),
	}
	fmt.Fprintln(w, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Snapshot Summary
// =============================================================================

// renderSummary renders a snapshot as key values plus a table of the
// realized containers.
func renderSummary(s snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Layout") + "\n")
	printKeyValue(&b, "orientation", s.Orientation)
	printKeyValue(&b, "rows", strconv.Itoa(s.Rows))
	printKeyValue(&b, "viewport", fmt.Sprintf("%gx%g", s.Viewport.Width, s.Viewport.Height))
	printKeyValue(&b, "extent", fmt.Sprintf("%gx%g", s.Extent.Width, s.Extent.Height))
	printKeyValue(&b, "offset", fmt.Sprintf("%g,%g", s.Offset.X, s.Offset.Y))
	printKeyValue(&b, "position", positionString(s.Position))
	if s.Current.Container >= 0 {
		printKeyValue(&b, "current", fmt.Sprintf("container %d (%s)", s.Current.Container, s.Current.Placement))
	}

	var rows [][]string
	add := func(c snapshot.Container, kind string) {
		rows = append(rows, []string{
			strconv.Itoa(c.Ordinal),
			kind,
			strconv.FormatFloat(c.Length, 'g', -1, 64),
			rowList(c.Rows),
			rowFlags(c.Rows),
		})
	}
	for _, c := range s.Window {
		add(c, "window")
	}
	for _, c := range s.Isolated {
		add(c, "isolated")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Container", "Kind", "Length", "Rows", "Flags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if row >= 0 && row < len(rows) && rows[row][1] == "isolated" {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

func positionString(p snapshot.Position) string {
	if p.Region == "repeat" {
		return fmt.Sprintf("%s[%d].%d+%.2f", p.Region, p.Container, p.Track, p.Fraction)
	}
	return fmt.Sprintf("%s.%d+%.2f", p.Region, p.Track, p.Fraction)
}

func rowList(rs []snapshot.Row) string {
	if len(rs) == 0 {
		return "-"
	}
	if len(rs) == 1 {
		return strconv.Itoa(rs[0].Ordinal)
	}
	return fmt.Sprintf("%d-%d", rs[0].Ordinal, rs[len(rs)-1].Ordinal)
}

func rowFlags(rs []snapshot.Row) string {
	var flags []string
	for _, r := range rs {
		switch {
		case r.Editing:
			flags = append(flags, fmt.Sprintf("%d:editing", r.Ordinal))
		case r.Current:
			flags = append(flags, fmt.Sprintf("%d:current", r.Ordinal))
		}
		if r.Selected {
			flags = append(flags, fmt.Sprintf("%d:selected", r.Ordinal))
		}
		if r.Expanded {
			flags = append(flags, fmt.Sprintf("%d:expanded", r.Ordinal))
		}
	}
	return strings.Join(flags, " ")
}
