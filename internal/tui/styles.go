package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/idilsaglam/todo-client/internal/ui"
)

// ------- styling (Lip Gloss), derived from the current ui.Theme -------
var (
	titleStyle   lipgloss.Style
	successStyle lipgloss.Style
	pendingStyle lipgloss.Style
	accentStyle  lipgloss.Style
	mutedStyle   lipgloss.Style
	errorStyle   lipgloss.Style

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     lipgloss.Style
	helpStyle     = lipgloss.NewStyle().Faint(true)
	panelStyle    lipgloss.Style

	boxChecked   string
	boxUnchecked string
	symDone      string
	symOpen      string
)

func init() { applyTheme(ui.Current(), false) }

// colored returns a style with foreground n, or the bare style when the
// palette leaves n empty.
func colored(n string) lipgloss.Style {
	s := lipgloss.NewStyle()
	if n != "" {
		s = s.Foreground(lipgloss.Color(n))
	}
	return s
}

// applyTheme rebuilds every style from t. Colour is dropped entirely for
// the mono theme or when noColor is set.
func applyTheme(t ui.Theme, noColor bool) {
	p := t.Palette
	titleStyle = colored(p.Title).Bold(true)
	successStyle = colored(p.Success)
	pendingStyle = colored(p.Pending)
	accentStyle = colored(p.Accent)
	mutedStyle = colored(p.Muted).Faint(true)
	errorStyle = colored(p.Error).Bold(true)
	doneStyle = colored(p.Muted).Faint(true).Strikethrough(true)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if p.Muted != "" {
		panelStyle = panelStyle.BorderForeground(lipgloss.Color(p.Muted))
	}

	boxChecked, boxUnchecked = t.Glyphs.Checked, t.Glyphs.Unchecked
	symDone, symOpen = t.Glyphs.Done, t.Glyphs.Open

	if noColor || t.Name == "mono" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
