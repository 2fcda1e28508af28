package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Enter         key.Binding
	Back          key.Binding
	Search        key.Binding
	Tab           key.Binding
	Filter        key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	SwitchAccount key.Binding
	Reload        key.Binding
	Toggle        key.Binding
	Disconnect    key.Binding
	Configure     key.Binding
	Dashboard     key.Binding
	Integrations  key.Binding
	Inbox         key.Binding
	Quit          key.Binding
}

var keys = keyMap{
	Up:            key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:          key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Left:          key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev tab")),
	Right:         key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next tab")),
	Enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Tab:           key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Filter:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	NextPage:      key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	PrevPage:      key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	SwitchAccount: key.NewBinding(key.WithKeys("@"), key.WithHelp("@", "account")),
	Reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Toggle:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "enable/disable")),
	Disconnect:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "disconnect")),
	Configure:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "settings")),
	Dashboard:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
	Integrations:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "integrations")),
	Inbox:         key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "inbox")),
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
