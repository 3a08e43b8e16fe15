// Package tui is the interactive todo list.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-client/internal/controller"
	"github.com/idilsaglam/todo-client/internal/model"
	"github.com/idilsaglam/todo-client/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ item model.Item }

func (i listItem) TitleText() string {
	box := boxUnchecked
	if i.item.Completed {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.item.Text)
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.TitleText() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	boxStyled := mutedStyle.Render(boxUnchecked)
	textStyled := it.item.Text
	if it.item.Completed {
		boxStyled = successStyle.Render(boxChecked)
		textStyled = doneStyle.Render(it.item.Text)
	}

	line := fmt.Sprintf("%s %s", boxStyled, textStyled)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
)

// opDoneMsg reports a finished controller operation.
type opDoneMsg struct {
	op      string
	outcome controller.Outcome
}

type keyMap struct {
	Toggle, Add, Edit, Delete, Reload, Copy, Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) extra() []key.Binding {
	return []key.Binding{k.Toggle, k.Add, k.Edit, k.Delete, k.Reload, k.Copy}
}

// Model drives a controller from key presses. Every request runs as a
// tea.Cmd; the list is rebuilt from the controller's state when it returns.
type Model struct {
	ctx  context.Context
	ctl  *controller.Controller
	keys keyMap

	list list.Model
	ti   textinput.Model
	spin spinner.Model

	mode     mode
	editID   model.ID
	inputErr string
	status   string

	// item the cursor should land on once a pending refilter reports back
	keepID model.ID

	// requests handed to the runtime but not yet reported back
	inflight int

	copyText func(string) error
}

// New builds the interactive model. Its Init command loads the list.
func New(ctx context.Context, ctl *controller.Controller) Model {
	keys := newKeyMap()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = func() []key.Binding { return append(keys.extra(), keys.Quit) }
	l.AdditionalFullHelpKeys = func() []key.Binding { return append(keys.extra(), keys.Quit) }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle

	m := Model{
		ctx:      ctx,
		ctl:      ctl,
		keys:     keys,
		list:     l,
		ti:       ti,
		spin:     sp,
		copyText: clipboard.WriteAll,
		// the load issued by Init
		inflight: 1,
	}
	m.refreshTitle()
	return m
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(ctx context.Context, ctl *controller.Controller, noColor bool) error {
	applyTheme(ui.Current(), noColor)
	p := tea.NewProgram(New(ctx, ctl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.load())
}

// Pending reports whether any request is outstanding. All mutation keys
// are ignored while it is true.
func (m Model) Pending() bool {
	return m.inflight > 0 || m.ctl.State().Pending
}

func (m Model) load() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg { return opDoneMsg{op: "load", outcome: ctl.Load(ctx)} }
}

// start hands op to the runtime and marks it in flight.
func (m *Model) start(op string, fn func(context.Context) controller.Outcome) tea.Cmd {
	m.inflight++
	m.status = ""
	ctx := m.ctx
	return func() tea.Msg { return opDoneMsg{op: op, outcome: fn(ctx)} }
}

func (m Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.item, true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshTitle()
		return m, cmd

	case opDoneMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		m.status = statusFor(msg)
		cmd := m.sync()
		return m, cmd

	case list.FilterMatchesMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		if m.keepID != "" {
			m.reselect()
			m.keepID = ""
		}
		return m, cmd
	}

	switch m.mode {
	case modeAdd, modeEdit:
		return m.updateInput(msg)
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(kmsg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(kmsg, m.keys.Copy):
			if it, ok := m.selected(); ok {
				if err := m.copyText(it.Text); err != nil {
					m.status = "copy failed: " + err.Error()
				} else {
					m.status = "copied"
				}
			}
			return m, nil
		case key.Matches(kmsg, m.keys.Toggle, m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Reload):
			if m.Pending() {
				return m, nil
			}
			return m.handleAction(kmsg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleAction(kmsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.ctl
	switch {
	case key.Matches(kmsg, m.keys.Reload):
		cmd := m.start("load", ctl.Load)
		return m, cmd

	case key.Matches(kmsg, m.keys.Add):
		m.mode = modeAdd
		m.inputErr = ""
		m.ti.SetValue(ctl.State().Draft)
		m.ti.CursorEnd()
		m.ti.Placeholder = "New item text..."
		cmd := m.ti.Focus()
		return m, cmd
	}

	it, ok := m.selected()
	if !ok {
		return m, nil
	}
	id := it.ID
	switch {
	case key.Matches(kmsg, m.keys.Toggle):
		cmd := m.start("toggle", func(ctx context.Context) controller.Outcome { return ctl.Toggle(ctx, id) })
		return m, cmd
	case key.Matches(kmsg, m.keys.Delete):
		cmd := m.start("remove", func(ctx context.Context) controller.Outcome { return ctl.Remove(ctx, id) })
		return m, cmd
	case key.Matches(kmsg, m.keys.Edit):
		m.mode = modeEdit
		m.editID = id
		m.inputErr = ""
		m.ti.SetValue(it.Text)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit item text..."
		cmd := m.ti.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			text := m.ti.Value()
			if model.Blank(text) {
				m.inputErr = "Text cannot be empty"
				return m, nil
			}
			if m.Pending() {
				m.inputErr = "Waiting for the server..."
				return m, nil
			}
			ctl, id := m.ctl, m.editID
			var cmd tea.Cmd
			if m.mode == modeAdd {
				cmd = m.start("create", func(ctx context.Context) controller.Outcome { return ctl.Create(ctx, text) })
			} else {
				cmd = m.start("update", func(ctx context.Context) controller.Outcome { return ctl.Update(ctx, id, text) })
			}
			m.leaveInput()
			return m, cmd
		case "esc":
			m.leaveInput()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	if m.mode == modeAdd {
		m.ctl.SetDraft(m.ti.Value())
	}
	return m, cmd
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.editID = ""
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

// sync rebuilds the list from the controller, keeping the cursor on the
// same item id when it still exists. With a filter applied the visible
// rows only arrive with the refilter result, so the id is held in keepID
// until then.
func (m *Model) sync() tea.Cmd {
	if cur, ok := m.selected(); ok {
		m.keepID = cur.ID
	}

	st := m.ctl.State()
	items := make([]list.Item, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, listItem{item: it})
	}
	cmd := m.list.SetItems(items)
	if cmd == nil {
		m.reselect()
		m.keepID = ""
	}
	m.refreshTitle()
	return cmd
}

// reselect moves the cursor to keepID among the visible rows. When the
// item is gone the cursor is clamped to the last row.
func (m *Model) reselect() {
	visible := m.list.VisibleItems()
	for i, li := range visible {
		if it, ok := li.(listItem); ok && it.item.ID == m.keepID {
			m.list.Select(i)
			return
		}
	}
	if n := len(visible); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

// refreshTitle puts live counts (and a spinner while busy) in the header.
func (m *Model) refreshTitle() {
	st := m.ctl.State()
	dn, pn := model.Count(st.Items)
	title := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render(symDone), dn,
		pendingStyle.Render(symOpen), pn,
		accentStyle.Render("Total"), len(st.Items),
	)
	if m.inflight > 0 || st.Pending {
		title += "  " + m.spin.View()
	}
	m.list.Title = title
}

func (m *Model) resize(w, h int) {
	listHeight := h - 4
	if m.mode != modeBrowse {
		listHeight = h - 6
	}
	m.list.SetSize(w-4, listHeight)
	m.ti.Width = w - 10
}

func statusFor(msg opDoneMsg) string {
	switch msg.outcome {
	case controller.Applied:
		switch msg.op {
		case "create":
			return "added"
		case "toggle":
			return "toggled"
		case "update":
			return "saved"
		case "remove":
			return "removed"
		}
	case controller.Skipped:
		if msg.op == "update" {
			return "unchanged"
		}
	}
	return ""
}

func (m Model) View() string {
	content := m.list.View()

	if m.mode != modeBrowse {
		title := "Add new item"
		if m.mode == modeEdit {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += " - " + errorStyle.Render(m.inputErr)
		}
		content += "\n" + panelStyle.Render(title+"\n"+m.ti.View())
	}

	if st := m.ctl.State(); st.LastError != "" {
		content += "\n" + errorStyle.Render("✖ "+st.LastError)
	} else if m.status != "" {
		content += "\n" + successStyle.Render("✔ "+m.status)
	}
	return panelStyle.Render(strings.TrimRight(content, "\n"))
}
