package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/todo-client/internal/model"
)

// maxTextWidth truncates long todo text in plain listings.
const maxTextWidth = 80

// Header is the title line with live counts.
func Header(items []model.Item) string {
	t := Current()
	d, p := model.Count(items)
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(bold, Paint(t.Palette.Title, "Todos")),
		Paint(t.Palette.Success, t.Glyphs.Done), d,
		Paint(t.Palette.Pending, t.Glyphs.Open), p,
		Paint(t.Palette.Accent, "Total"), len(items),
	)
}

// ListLines renders the full framed listing body.
func ListLines(items []model.Item, group bool) []string {
	t := Current()
	d, p := model.Count(items)

	lines := []string{
		Header(items),
		Paint(t.Palette.Muted, ProgressBar(d, d+p, 28)),
		"",
	}
	if group {
		lines = append(lines, GroupLines(items)...)
	} else {
		lines = append(lines, FlatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, Paint(t.Palette.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	return lines
}

// FlatLines renders one line per item, keyed by the item's id.
func FlatLines(items []model.Item) []string {
	t := Current()
	if len(items) == 0 {
		return []string{Paint(t.Palette.Muted, "no items")}
	}
	idw := 0
	for _, it := range items {
		if n := len(it.ID); n > idw {
			idw = n
		}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, color := t.Glyphs.Unchecked, t.Palette.Muted
		if it.Completed {
			box, color = t.Glyphs.Checked, t.Palette.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			Dim(fmt.Sprintf("%-*s", idw, it.ID)), Paint(color, box), Truncate(it.Text, maxTextWidth)))
	}
	return out
}

// GroupLines renders pending items first, then done ones.
func GroupLines(items []model.Item) []string {
	t := Current()
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, Paint(t.Palette.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, Paint(t.Palette.Muted, "(none)"))
	} else {
		lines = append(lines, FlatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, Paint(t.Palette.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, Paint(t.Palette.Muted, "(none)"))
	} else {
		lines = append(lines, FlatLines(done)...)
	}
	return lines
}

const ellipsis = "..."

// Truncate shortens s to at most n terminal cells, ending in "..." when
// there is room for it.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n <= len(ellipsis) {
		return runewidth.Truncate(s, n, "")
	}
	return runewidth.Truncate(s, n, ellipsis)
}
