package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/klytics/sheetkit/internal/palette"
	"github.com/klytics/sheetkit/internal/table"
)

// TableOptions control RenderTable.
type TableOptions struct {
	// MaxWidth caps the display width of a column. Zero means no cap.
	MaxWidth int
	// Color enables header shades and cell backgrounds.
	Color bool
}

const (
	ascArrow  = "↓"
	descArrow = "↑"
	ellipsis  = "…"
	gap       = "  "
)

// Label returns the header text of c including its sort arrow.
func Label(c table.ViewColumn) string {
	switch c.Sort {
	case table.Asc:
		return c.Label + " " + ascArrow
	case table.Desc:
		return c.Label + " " + descArrow
	}
	return c.Label
}

// RenderTable draws v as an aligned text table. The first column holds the
// displayed row numbers, which are what the set command takes.
func RenderTable(w io.Writer, v *table.ViewTable, opts TableOptions) error {
	headers := make([]string, len(v.Columns)+1)
	headers[0] = "#"
	for i, c := range v.Columns {
		headers[i+1] = Label(c)
	}

	cells := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		line := make([]string, len(r.Cells)+1)
		line[0] = strconv.Itoa(i + 1)
		for j, c := range r.Cells {
			line[j+1] = flatten(c.Text)
		}
		cells[i] = line
	}

	widths := make([]int, len(headers))
	for j, h := range headers {
		widths[j] = runewidth.StringWidth(h)
	}
	for _, line := range cells {
		for j, s := range line {
			if n := runewidth.StringWidth(s); n > widths[j] {
				widths[j] = n
			}
		}
	}
	if opts.MaxWidth > 0 {
		for j := 1; j < len(widths); j++ {
			if widths[j] > opts.MaxWidth {
				widths[j] = opts.MaxWidth
			}
		}
	}

	var b strings.Builder

	for j, h := range headers {
		if j > 0 {
			b.WriteString(gap)
		}
		text := fit(h, widths[j])
		if opts.Color && j > 0 {
			bg, fg := palette.HeaderShade(v.Columns[j-1].Name)
			text = paint(bg, fg).Sprint(" " + text + " ")
		} else if opts.Color {
			text = " " + text + " "
		}
		b.WriteString(text)
	}
	b.WriteString("\n")

	for j := range headers {
		if j > 0 {
			b.WriteString(gap)
		}
		n := widths[j]
		if opts.Color {
			n += 2
		}
		b.WriteString(strings.Repeat("─", n))
	}
	b.WriteString("\n")

	for i, line := range cells {
		for j, s := range line {
			if j > 0 {
				b.WriteString(gap)
			}
			var text string
			if j == 0 {
				text = runewidth.FillLeft(s, widths[0])
			} else {
				text = fit(s, widths[j])
			}
			if opts.Color {
				text = " " + text + " "
				if j > 0 {
					if bg := v.Rows[i].Cells[j-1].Background; bg != nil {
						text = paint(*bg, palette.Contrast(*bg)).Sprint(text)
					}
				}
			}
			b.WriteString(text)
		}
		b.WriteString("\n")
	}

	b.WriteString(Footer(v))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Footer summarizes how many rows the view keeps.
func Footer(v *table.ViewTable) string {
	shown := len(v.Rows)
	if shown == v.Total {
		return fmt.Sprintf("%d %s", shown, plural(shown, "row"))
	}
	return fmt.Sprintf("%d of %d %s", shown, v.Total, plural(v.Total, "row"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// fit truncates s to width display cells and pads it on the right.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	return runewidth.FillRight(s, width)
}

// flatten keeps multi-line cells on one table line.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}

// paint builds a 24-bit background and foreground color.
func paint(bg, fg palette.Color) *color.Color {
	c := color.New(
		48, 2, color.Attribute(bg.R), color.Attribute(bg.G), color.Attribute(bg.B),
		38, 2, color.Attribute(fg.R), color.Attribute(fg.G), color.Attribute(fg.B),
	)
	c.EnableColor()
	return c
}
