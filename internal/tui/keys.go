package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	Tab4     key.Binding
	Refresh  key.Binding
	Up       key.Binding
	Down     key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Preview  key.Binding
	Approve  key.Binding
	Reject   key.Binding
	Filter   key.Binding
	Pending  key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	GotoPage key.Binding
	Export   key.Binding
	Open     key.Binding

	// Form bindings.
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	Toggle    key.Binding
	PickFile  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		NextTab:  key.NewBinding(key.WithKeys("tab", "L"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "H"), key.WithHelp("shift+tab", "prev tab")),
		Tab1:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1-4", "jump to tab")),
		Tab2:     key.NewBinding(key.WithKeys("2")),
		Tab3:     key.NewBinding(key.WithKeys("3")),
		Tab4:     key.NewBinding(key.WithKeys("4")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Preview:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Approve:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "event filter")),
		Pending:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pending only")),
		PrevPage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		GotoPage: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
		Export:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export page")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),

		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Toggle:    key.NewBinding(key.WithKeys("left", "right", " "), key.WithHelp("←/→", "change")),
		PickFile:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "pick image")),
	}
}

// contextHelp feeds help.Model the bindings of the current tab and focus.
type contextHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h contextHelp) ShortHelp() []key.Binding  { return h.short }
func (h contextHelp) FullHelp() [][]key.Binding { return h.full }
