package ui

import "strings"

// Palette entries are xterm-256 colour numbers. An empty entry leaves the
// terminal's default colour alone.
type Palette struct {
	Title, Muted, Accent, Success, Error, Pending string
}

// Glyphs are the symbols drawn next to items and in the header.
type Glyphs struct {
	Unchecked, Checked string
	Done, Open         string
}

// Frame is the box drawing set used by Panel.
type Frame struct {
	TL, TR, BL, BR string
	H, V           string
}

// Theme drives both the plain output here and the lipgloss styles of the
// interactive view.
type Theme struct {
	Name    string
	Palette Palette
	Glyphs  Glyphs
	Frame   Frame
}

var themes = map[string]Theme{
	"classic": {
		Name:    "classic",
		Palette: Palette{Muted: "8", Accent: "4", Success: "2", Error: "1", Pending: "3"},
		Glyphs:  Glyphs{Unchecked: "☐", Checked: "☑", Done: "✔", Open: "•"},
		Frame:   Frame{TL: "┌", TR: "┐", BL: "└", BR: "┘", H: "─", V: "│"},
	},
	"neon": {
		Name:    "neon",
		Palette: Palette{Title: "13", Muted: "8", Accent: "14", Success: "10", Error: "9", Pending: "11"},
		Glyphs:  Glyphs{Unchecked: "◻", Checked: "◼", Done: "✔", Open: "•"},
		Frame:   Frame{TL: "╭", TR: "╮", BL: "╰", BR: "╯", H: "─", V: "│"},
	},
	"mono": {
		Name:   "mono",
		Glyphs: Glyphs{Unchecked: "[ ]", Checked: "[x]", Done: "x", Open: "-"},
		Frame:  Frame{TL: "+", TR: "+", BL: "+", BR: "+", H: "-", V: "|"},
	},
}

var current = themes["classic"]

// SetTheme switches the current theme. Unknown names fall back to classic;
// mono also turns colour off.
func SetTheme(name string) {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		t = themes["classic"]
	}
	if t.Name == "mono" {
		disableColor = true
	}
	current = t
}

func Current() Theme { return current }
