package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/tabnav/internal/theme"
)

// Mode names shown in the status bar.
const (
	ModeNormal  = "NORMAL"
	ModeInsert  = "INSERT"
	ModeHistory = "HISTORY"
)

// HistoryInfo summarizes the tab history for display.
type HistoryInfo struct {
	Cursor     int
	Len        int
	CanBack    bool
	CanForward bool
}

// StatusBar shows the mode, page title and tab history position.
type StatusBar struct {
	title      string
	loading    bool
	scrollInfo string
	mode       string
	history    HistoryInfo
	width      int
	message    string // temporary status message
	isError    bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar() StatusBar {
	return StatusBar{
		mode:    ModeNormal,
		history: HistoryInfo{Cursor: -1},
	}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// SetTitle updates the page title.
func (s *StatusBar) SetTitle(title string) {
	s.title = title
}

// SetLoading sets the loading indicator state.
func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

// SetScrollInfo sets the scroll position string (e.g. "42%", "TOP", "BOT").
func (s *StatusBar) SetScrollInfo(info string) {
	s.scrollInfo = info
}

// SetMode sets the current mode indicator.
func (s *StatusBar) SetMode(mode string) {
	s.mode = mode
}

// SetHistory updates the tab history indicator.
func (s *StatusBar) SetHistory(h HistoryInfo) {
	s.history = h
}

// SetMessage sets a temporary status message.
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
	s.isError = false
}

// SetError sets a temporary error message.
func (s *StatusBar) SetError(msg string) {
	s.message = msg
	s.isError = true
}

// ClearMessage removes any temporary message.
func (s *StatusBar) ClearMessage() {
	s.message = ""
	s.isError = false
}

// Label renders the position indicator, e.g. "◀ 3/7 ▶".
func (h HistoryInfo) Label() string {
	back, fwd := "◁", "▷"
	if h.CanBack {
		back = "◀"
	}
	if h.CanForward {
		fwd = "▶"
	}
	return fmt.Sprintf("%s %d/%d %s", back, h.Cursor+1, h.Len, fwd)
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := theme.Current

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Background).
		Padding(0, 1)

	switch s.mode {
	case ModeNormal:
		modeStyle = modeStyle.Background(t.Primary)
	case ModeInsert:
		modeStyle = modeStyle.Background(t.Success)
	case ModeHistory:
		modeStyle = modeStyle.Background(t.Secondary)
	default:
		modeStyle = modeStyle.Background(t.Accent)
	}
	mode := modeStyle.Render(s.mode)

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface)

	var left string
	switch {
	case s.message != "":
		fg := t.Info
		if s.isError {
			fg = t.Error
		}
		left = lipgloss.NewStyle().
			Foreground(fg).
			Background(t.Surface).
			Padding(0, 1).
			Render(s.message)
	case s.loading:
		left = lipgloss.NewStyle().
			Foreground(t.Warning).
			Background(t.Surface).
			Bold(true).
			Padding(0, 1).
			Render("Loading...")
	case s.title != "":
		left = lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Surface).
			Padding(0, 1).
			Render(s.title)
	}

	historyStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.HistoryCursor).
		Background(t.Surface).
		Padding(0, 1)
	scrollStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface).
		Padding(0, 1)

	right := historyStyle.Render(s.history.Label())
	if s.scrollInfo != "" {
		right += scrollStyle.Render(s.scrollInfo)
	}

	spacerWidth := s.width - lipgloss.Width(mode) - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := lipgloss.NewStyle().
		Background(t.Surface).
		Render(fmt.Sprintf("%*s", spacerWidth, ""))

	return barStyle.Render(mode + left + spacer + right)
}
