package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/tabnav/internal/browser"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
	"github.com/vidyasagar/tabnav/internal/theme"
)

// TabBar renders the tabs of the focused window along with a window
// indicator. It holds no tab state of its own; the session snapshot is
// handed to it before every render.
type TabBar struct {
	view       browser.View
	width      int
	maxVisible int
}

// NewTabBar creates an empty tab bar.
func NewTabBar() TabBar {
	return TabBar{maxVisible: 4}
}

// SetWidth sets the tab bar width.
func (tb *TabBar) SetWidth(w int) {
	tb.width = w
	tb.maxVisible = w / 20
	if tb.maxVisible < 2 {
		tb.maxVisible = 2
	}
	if tb.maxVisible > 10 {
		tb.maxVisible = 10
	}
}

// SetView replaces the session snapshot being rendered.
func (tb *TabBar) SetView(v browser.View) {
	tb.view = v
}

// windowIndex returns the 1-based position of the focused window.
func (tb *TabBar) windowIndex() int {
	for i, w := range tb.view.Windows {
		if w.ID == tb.view.Focused {
			return i + 1
		}
	}
	return 0
}

// visibleRange returns the slice of tabs to draw, centred on active.
func visibleRange(n, active, limit int) (int, int) {
	if n <= limit {
		return 0, n
	}
	start := active - limit/2
	if start < 0 {
		start = 0
	}
	end := start + limit
	if end > n {
		end = n
		start = end - limit
	}
	return start, end
}

func tabLabel(tab browser.Tab) string {
	title := tab.Title
	if title == "" {
		title = "New Tab"
	}
	if tab.Status == tabhistory.StatusLoading {
		title = "… " + title
	}
	return title
}

// View renders the tab bar.
func (tb *TabBar) View() string {
	t := theme.Current

	activeStyle := lipgloss.NewStyle().
		Foreground(t.TextBright).
		Background(t.TabActive).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.TabInactive).
		Padding(0, 1)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	windowStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Secondary).
		Bold(true).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString(windowStyle.Render(fmt.Sprintf("W%d/%d", tb.windowIndex(), len(tb.view.Windows))))

	w, ok := tb.view.FocusedWindow()
	if !ok {
		return lipgloss.NewStyle().Background(t.Surface).Width(tb.width).Render(sb.String())
	}

	start, end := visibleRange(len(w.Tabs), w.Active, tb.maxVisible)
	if start > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf(" +%d ", start)))
	}

	maxTitleLen := tb.width/tb.maxVisible - 6
	if maxTitleLen < 8 {
		maxTitleLen = 8
	}
	for i := start; i < end; i++ {
		title := truncate(tabLabel(w.Tabs[i]), maxTitleLen)
		label := fmt.Sprintf("%d:%s", w.Tabs[i].ID, title)
		if i == w.Active {
			sb.WriteString(activeStyle.Render(label))
		} else {
			sb.WriteString(inactiveStyle.Render(label))
		}
		if i < end-1 {
			sb.WriteString(dimStyle.Render("|"))
		}
	}

	if end < len(w.Tabs) {
		sb.WriteString(dimStyle.Render(fmt.Sprintf(" +%d ", len(w.Tabs)-end)))
	}

	barStyle := lipgloss.NewStyle().
		Background(t.Surface).
		Width(tb.width)
	return barStyle.Render(sb.String())
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
