package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for tabnav.
type KeyMap struct {
	// Scrolling
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	GotoTop      key.Binding
	GotoBottom   key.Binding

	// Tab history
	NavigateBack    key.Binding
	NavigateForward key.Binding
	HistoryToggle   key.Binding

	// Pages
	OpenURL key.Binding
	Reload  key.Binding

	// Tabs and windows
	NewTab      key.Binding
	NewWindow   key.Binding
	CloseTab    key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	CycleWindow key.Binding

	// Actions
	CycleTheme key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default vim-style keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "scroll down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "scroll up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("Ctrl+d", "half page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("Ctrl+u", "half page up"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		NavigateBack: key.NewBinding(
			key.WithKeys("H", "alt+left"),
			key.WithHelp("H/Alt+←", "previous tab in history"),
		),
		NavigateForward: key.NewBinding(
			key.WithKeys("L", "alt+right"),
			key.WithHelp("L/Alt+→", "next tab in history"),
		),
		HistoryToggle: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("Ctrl+h", "toggle tab history"),
		),
		OpenURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open URL"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload page"),
		),
		NewTab: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("Ctrl+t", "new tab"),
		),
		NewWindow: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("Ctrl+n", "new window"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("Ctrl+w", "close tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "prev tab"),
		),
		CycleWindow: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "next window"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpSections groups the bindings for the help screen.
func (k KeyMap) helpSections() []struct {
	name     string
	bindings []key.Binding
} {
	return []struct {
		name     string
		bindings []key.Binding
	}{
		{"Tab history", []key.Binding{k.NavigateBack, k.NavigateForward, k.HistoryToggle}},
		{"Tabs and windows", []key.Binding{k.NewTab, k.NewWindow, k.CloseTab, k.NextTab, k.PrevTab, k.CycleWindow}},
		{"Pages", []key.Binding{k.OpenURL, k.Reload}},
		{"Scrolling", []key.Binding{k.ScrollDown, k.ScrollUp, k.HalfPageDown, k.HalfPageUp, k.GotoTop, k.GotoBottom}},
		{"Other", []key.Binding{k.CycleTheme, k.Help, k.Quit}},
	}
}
