package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/tabnav/internal/theme"
)

// URLBar shows the active tab's address and takes input when opening a URL.
type URLBar struct {
	input   textinput.Model
	current string // address of the active tab, shown while not editing
	active  bool
	width   int
}

// NewURLBar creates a new URL bar.
func NewURLBar() URLBar {
	ti := textinput.New()
	ti.Placeholder = "Enter URL or search..."
	ti.CharLimit = 2048
	ti.Width = 60
	return URLBar{input: ti}
}

// SetWidth updates the URL bar width.
func (u *URLBar) SetWidth(w int) {
	u.width = w
	u.input.Width = w - 8
}

// SetCurrent sets the address displayed while the bar is not focused.
func (u *URLBar) SetCurrent(url string) {
	u.current = url
}

// Focus activates the URL bar for input, pre-filled with the current address.
func (u *URLBar) Focus() tea.Cmd {
	u.active = true
	u.input.SetValue(u.current)
	u.input.CursorEnd()
	return u.input.Focus()
}

// Blur deactivates the URL bar and drops any unsubmitted input.
func (u *URLBar) Blur() {
	u.active = false
	u.input.Blur()
	u.input.Reset()
}

// Submit returns the trimmed input and blurs the bar.
func (u *URLBar) Submit() string {
	v := strings.TrimSpace(u.input.Value())
	u.Blur()
	return v
}

// Update handles messages for the URL bar.
func (u *URLBar) Update(msg tea.Msg) tea.Cmd {
	if !u.active {
		return nil
	}
	var cmd tea.Cmd
	u.input, cmd = u.input.Update(msg)
	return cmd
}

// View renders the URL bar.
func (u *URLBar) View() string {
	t := theme.Current

	border := t.Border
	fg := t.TextDim
	if u.active {
		border = t.BorderFocus
		fg = t.Text
	}
	barStyle := lipgloss.NewStyle().
		Foreground(fg).
		Background(t.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(u.width - 2)

	promptStyle := lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	body := u.current
	if u.active {
		body = u.input.View()
	} else if body == "" {
		body = "about:blank"
	}
	return barStyle.Render(promptStyle.Render("›") + " " + body)
}
