package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
	"github.com/vidyasagar/tabnav/internal/theme"
)

// HistoryRow is one tab history entry as displayed by HistoryPanel.
type HistoryRow struct {
	ID    tabhistory.TabID
	Title string
	URL   string
	Live  bool // false once the tab has closed
}

// HistoryPanel lists the tab history, oldest first, marking the entry at
// the history cursor. It has its own selection for picking a tab to open.
type HistoryPanel struct {
	rows     []HistoryRow
	position int // history cursor
	selected int
	offset   int
	width    int
	height   int
	visible  bool
}

// NewHistoryPanel creates a new history panel.
func NewHistoryPanel() HistoryPanel {
	return HistoryPanel{position: -1}
}

// SetRows updates the displayed entries and the history cursor.
func (hp *HistoryPanel) SetRows(rows []HistoryRow, position int) {
	hp.rows = rows
	hp.position = position
	if hp.selected >= len(rows) {
		hp.selected = len(rows) - 1
	}
	if hp.selected < 0 {
		hp.selected = 0
	}
	hp.ensureVisible()
}

// SetSize updates the panel dimensions.
func (hp *HistoryPanel) SetSize(w, h int) {
	hp.width = w
	hp.height = h
}

// Show makes the panel visible with the selection on the history cursor.
func (hp *HistoryPanel) Show() {
	hp.visible = true
	hp.selected = hp.position
	if hp.selected < 0 {
		hp.selected = 0
	}
	hp.offset = 0
	hp.ensureVisible()
}

// Hide closes the panel.
func (hp *HistoryPanel) Hide() {
	hp.visible = false
}

// IsVisible reports whether the panel is shown.
func (hp *HistoryPanel) IsVisible() bool {
	return hp.visible
}

// CursorUp moves the selection up one entry.
func (hp *HistoryPanel) CursorUp() {
	if hp.selected > 0 {
		hp.selected--
		hp.ensureVisible()
	}
}

// CursorDown moves the selection down one entry.
func (hp *HistoryPanel) CursorDown() {
	if hp.selected < len(hp.rows)-1 {
		hp.selected++
		hp.ensureVisible()
	}
}

// Selected returns the selected row, if any.
func (hp *HistoryPanel) Selected() (HistoryRow, bool) {
	if hp.selected < 0 || hp.selected >= len(hp.rows) {
		return HistoryRow{}, false
	}
	return hp.rows[hp.selected], true
}

// visibleCount returns how many rows fit below the two header lines.
func (hp *HistoryPanel) visibleCount() int {
	n := hp.height - 3
	if n < 1 {
		return 1
	}
	return n
}

func (hp *HistoryPanel) ensureVisible() {
	visible := hp.visibleCount()
	if hp.selected < hp.offset {
		hp.offset = hp.selected
	}
	if hp.selected >= hp.offset+visible {
		hp.offset = hp.selected - visible + 1
	}
	if hp.offset < 0 {
		hp.offset = 0
	}
}

// View renders the history panel.
func (hp *HistoryPanel) View() string {
	if !hp.visible {
		return ""
	}
	t := theme.Current

	panelStyle := lipgloss.NewStyle().
		Width(hp.width).
		Height(hp.height).
		Background(t.Background)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Background(t.Surface).
		Width(hp.width).
		Padding(0, 1)

	rowStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Width(hp.width).
		Padding(0, 1)
	selectedStyle := rowStyle.
		Foreground(t.TextBright).
		Background(t.TabActive).
		Bold(true)
	staleStyle := rowStyle.
		Foreground(t.HistoryStale).
		Strikethrough(true)
	markStyle := lipgloss.NewStyle().
		Foreground(t.HistoryCursor).
		Bold(true)
	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Tab history (%d)", len(hp.rows))))
	sb.WriteString("\n")
	sepWidth := hp.width - 2
	if sepWidth < 1 {
		sepWidth = 1
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", sepWidth)))
	sb.WriteString("\n")

	if len(hp.rows) == 0 {
		sb.WriteString(dimStyle.Render("No tabs visited yet."))
		return panelStyle.Render(sb.String())
	}

	end := hp.offset + hp.visibleCount()
	if end > len(hp.rows) {
		end = len(hp.rows)
	}
	for i := hp.offset; i < end; i++ {
		row := hp.rows[i]
		title := row.Title
		if title == "" {
			title = row.URL
		}
		if title == "" {
			title = "New Tab"
		}

		mark := "  "
		if i == hp.position {
			mark = markStyle.Render("▸ ")
		}
		line := truncate(fmt.Sprintf("%2d  #%d %s", i+1, row.ID, title), hp.width-6)

		style := rowStyle
		switch {
		case i == hp.selected:
			style = selectedStyle
		case !row.Live:
			style = staleStyle
		}
		sb.WriteString(style.Render(mark + line))
		sb.WriteString("\n")
	}

	if hp.height-2-(end-hp.offset) > 1 {
		hint := lipgloss.NewStyle().
			Foreground(t.TextDim).
			Italic(true).
			Padding(0, 1)
		sb.WriteString(hint.Render("j/k:move  Enter:switch  Esc:close"))
	}
	return panelStyle.Render(sb.String())
}
