package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/tabnav/internal/theme"
)

// PageViewport wraps bubbles/viewport and keeps the scroll offset of each
// tab so switching back to a tab returns to where it was left.
type PageViewport struct {
	viewport viewport.Model
	ready    bool
	key      string         // identifies the content currently shown
	content  string
	offsets  map[string]int // saved scroll offsets, by key
	empty    bool
}

// NewPageViewport creates a new viewport (dimensions set on first WindowSizeMsg).
func NewPageViewport() PageViewport {
	return PageViewport{offsets: make(map[string]int), empty: true}
}

// SetSize updates the viewport dimensions.
func (pv *PageViewport) SetSize(width, height int) {
	if !pv.ready {
		pv.viewport = viewport.New(width, height)
		pv.viewport.MouseWheelEnabled = true
		pv.viewport.MouseWheelDelta = 3
		pv.ready = true
		return
	}
	pv.viewport.Width = width
	pv.viewport.Height = height
}

// Show displays content under key. Showing the same content again keeps
// the scroll position, new content under the same key starts at the top,
// and a different key restores that key's saved offset. An empty content
// shows the welcome screen.
func (pv *PageViewport) Show(key, content string) {
	if !pv.ready {
		return
	}
	if key == pv.key && content == pv.content {
		return
	}
	if pv.key != "" {
		pv.offsets[pv.key] = pv.viewport.YOffset
	}
	pv.empty = content == ""
	pv.viewport.SetContent(content)
	if key == pv.key {
		pv.viewport.GotoTop()
	} else {
		pv.viewport.SetYOffset(pv.offsets[key])
	}
	pv.key, pv.content = key, content
}

// Forget drops the saved offset for key.
func (pv *PageViewport) Forget(key string) {
	delete(pv.offsets, key)
}

// Update forwards messages to the viewport.
func (pv *PageViewport) Update(msg tea.Msg) tea.Cmd {
	if !pv.ready {
		return nil
	}
	var cmd tea.Cmd
	pv.viewport, cmd = pv.viewport.Update(msg)
	return cmd
}

// View renders the viewport.
func (pv *PageViewport) View() string {
	if !pv.ready {
		return "\n  Initializing..."
	}
	if pv.empty {
		return pv.renderWelcome()
	}
	return pv.viewport.View()
}

// ScrollInfo returns a string like "42%" or "TOP" or "BOT".
func (pv *PageViewport) ScrollInfo() string {
	if !pv.ready || pv.empty {
		return ""
	}
	pct := pv.viewport.ScrollPercent()
	switch {
	case pct <= 0:
		return "TOP"
	case pct >= 1:
		return "BOT"
	default:
		return fmt.Sprintf("%d%%", int(pct*100))
	}
}

// LineDown scrolls down n lines.
func (pv *PageViewport) LineDown(n int) {
	if pv.ready {
		pv.viewport.LineDown(n)
	}
}

// LineUp scrolls up n lines.
func (pv *PageViewport) LineUp(n int) {
	if pv.ready {
		pv.viewport.LineUp(n)
	}
}

// HalfPageDown scrolls down half a page.
func (pv *PageViewport) HalfPageDown() {
	if pv.ready {
		pv.viewport.HalfViewDown()
	}
}

// HalfPageUp scrolls up half a page.
func (pv *PageViewport) HalfPageUp() {
	if pv.ready {
		pv.viewport.HalfViewUp()
	}
}

// GotoTop scrolls to the top.
func (pv *PageViewport) GotoTop() {
	if pv.ready {
		pv.viewport.GotoTop()
	}
}

// GotoBottom scrolls to the bottom.
func (pv *PageViewport) GotoBottom() {
	if pv.ready {
		pv.viewport.GotoBottom()
	}
}

func (pv *PageViewport) renderWelcome() string {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Secondary)
	descStyle := lipgloss.NewStyle().Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("  tabnav"))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("  Back and forward through the tabs you have visited"))
	sb.WriteString("\n\n")
	sb.WriteString(accentStyle.Render("  Keys"))
	sb.WriteString("\n\n")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"H / Alt+←", "Previous tab in history"},
		{"L / Alt+→", "Next tab in history"},
		{"o", "Open URL / search in this tab"},
		{"Ctrl+t", "New tab"},
		{"Ctrl+n", "New window"},
		{"Ctrl+w", "Close tab"},
		{"Tab / S-Tab", "Next / previous tab"},
		{"w", "Switch window"},
		{"Ctrl+h", "Tab history panel"},
		{"?", "Show all keybindings"},
		{"q", "Quit"},
	}
	for _, s := range shortcuts {
		sb.WriteString(keyStyle.Render(fmt.Sprintf("    %-14s", s.key)))
		sb.WriteString(descStyle.Render(s.desc))
		sb.WriteString("\n")
	}
	return sb.String()
}
