package app

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidyasagar/tabnav/internal/browser"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

func newTestModel(t *testing.T) (Model, *browser.Session, *tabhistory.Tracker) {
	t.Helper()
	s := browser.NewSession(nil, 0)
	tr := tabhistory.New(s, nil)
	m := New(Options{Session: s, Tracker: tr})
	t.Cleanup(m.cancel)

	if msg := m.Init()(); msg != (restoredMsg{}) {
		t.Fatalf("Init returned %T, want restoredMsg", msg)
	}
	return m, s, tr
}

// drain hands every queued session event to the tracker.
func drain(m Model, s *browser.Session) {
	for _, ev := range s.PendingEvents() {
		m.dispatch(ev)
	}
}

func runes(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func activeID(t *testing.T, s *browser.Session) tabhistory.TabID {
	t.Helper()
	info, err := s.ActiveTab(context.Background())
	if err != nil {
		t.Fatalf("ActiveTab: %v", err)
	}
	return info.ID
}

func TestKeyMapHistoryBindings(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{runes("H"), keys.NavigateBack},
		{tea.KeyMsg{Type: tea.KeyLeft, Alt: true}, keys.NavigateBack},
		{runes("L"), keys.NavigateForward},
		{tea.KeyMsg{Type: tea.KeyRight, Alt: true}, keys.NavigateForward},
		{tea.KeyMsg{Type: tea.KeyCtrlH}, keys.HistoryToggle},
	}
	for _, tt := range tests {
		if !key.Matches(tt.msg, tt.binding) {
			t.Errorf("%q does not match %q", tt.msg.String(), tt.binding.Help().Key)
		}
	}
	if key.Matches(runes("h"), keys.NavigateBack) {
		t.Error("lowercase h should not navigate back")
	}
}

func TestBackAndForwardKeys(t *testing.T) {
	m, s, tr := newTestModel(t)
	second := s.OpenTab()
	drain(m, s)

	m, cmd := press(m, runes("H"))
	msg := cmd()
	nav, ok := msg.(navigatedMsg)
	if !ok || nav.command != tabhistory.CommandBack || nav.err != nil {
		t.Fatalf("back produced %#v", msg)
	}
	drain(m, s)
	if id := activeID(t, s); id != 1 {
		t.Fatalf("active tab after back = %d, want 1", id)
	}
	if st := tr.State(); st.Cursor != 0 || len(st.Entries) != 2 {
		t.Fatalf("history after back = %+v", st)
	}

	next, _ := m.Update(msg)
	m = next.(Model)

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyRight, Alt: true})
	cmd()
	drain(m, s)
	if id := activeID(t, s); id != second {
		t.Errorf("active tab after forward = %d, want %d", id, second)
	}
}

func TestCloseLastTabQuits(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlW})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("closing the last tab should quit")
	}
}

func TestHistoryPanelMarksClosedTabs(t *testing.T) {
	m, s, tr := newTestModel(t)
	second := s.OpenTab()
	s.OpenTab()
	drain(m, s)
	if err := s.CloseTab(second); err != nil {
		t.Fatalf("CloseTab: %v", err)
	}
	// The removal is still queued, so the history keeps the closed tab.

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlH})
	if m.mode != ModeHistory || !m.historyPanel.IsVisible() {
		t.Fatalf("history panel should be open, mode=%d", m.mode)
	}

	rows := m.historyRows(tr.State())
	if len(rows) != 3 {
		t.Fatalf("rows = %+v", rows)
	}
	if !rows[0].Live || rows[1].Live || !rows[2].Live {
		t.Errorf("liveness = %v %v %v, want true false true", rows[0].Live, rows[1].Live, rows[2].Live)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != ModeNormal || m.historyPanel.IsVisible() {
		t.Error("esc should close the history panel")
	}
}

func TestViewShowsWindowAndHistoryPosition(t *testing.T) {
	m, s, _ := newTestModel(t)
	s.NewWindow()
	drain(m, s)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := next.(Model).View()
	if !strings.Contains(view, "W2/2") {
		t.Errorf("expected window indicator in view:\n%s", view)
	}
	if !strings.Contains(view, "2/2") {
		t.Errorf("expected history position in view:\n%s", view)
	}
}
