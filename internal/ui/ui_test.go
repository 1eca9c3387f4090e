package ui

import (
	"strings"
	"testing"

	"github.com/vidyasagar/tabnav/internal/browser"
)

func TestHistoryLabel(t *testing.T) {
	tests := []struct {
		info HistoryInfo
		want string
	}{
		{HistoryInfo{Cursor: -1}, "◁ 0/0 ▷"},
		{HistoryInfo{Cursor: 2, Len: 5, CanBack: true, CanForward: true}, "◀ 3/5 ▶"},
		{HistoryInfo{Cursor: 0, Len: 2, CanForward: true}, "◁ 1/2 ▶"},
	}
	for _, tt := range tests {
		if got := tt.info.Label(); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		n, active, limit int
		start, end       int
	}{
		{3, 1, 5, 0, 3},
		{10, 0, 4, 0, 4},
		{10, 5, 4, 3, 7},
		{10, 9, 4, 6, 10},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.n, tt.active, tt.limit)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange(%d, %d, %d) = %d, %d, want %d, %d",
				tt.n, tt.active, tt.limit, start, end, tt.start, tt.end)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept = %q", got)
	}
	if got := truncate("a rather long title", 10); got != "a rathe..." {
		t.Errorf("truncate = %q", got)
	}
}

func TestTabBarRendersFocusedWindow(t *testing.T) {
	s := browser.NewSession(nil, 0)
	s.OpenTab()
	s.NewWindow()

	tb := NewTabBar()
	tb.SetWidth(100)
	tb.SetView(s.Snapshot())
	out := tb.View()

	if !strings.Contains(out, "W2/2") {
		t.Errorf("missing window indicator:\n%s", out)
	}
	if !strings.Contains(out, "3:New Tab") || strings.Contains(out, "1:New Tab") {
		t.Errorf("expected only the focused window's tabs:\n%s", out)
	}
}

func TestHistoryPanelSelection(t *testing.T) {
	hp := NewHistoryPanel()
	hp.SetSize(40, 20)
	hp.SetRows([]HistoryRow{{ID: 1, Live: true}, {ID: 4}, {ID: 7, Live: true}}, 1)
	hp.Show()

	row, ok := hp.Selected()
	if !ok || row.ID != 4 {
		t.Fatalf("selection should start on the history cursor, got %+v", row)
	}
	hp.CursorDown()
	hp.CursorDown()
	if row, _ := hp.Selected(); row.ID != 7 {
		t.Errorf("selection = %d, want 7", row.ID)
	}
	if !strings.Contains(hp.View(), "Tab history (3)") {
		t.Error("missing panel header")
	}
}
