package tabhistory

import (
	"reflect"
	"testing"
)

func stackOf(pos int, ids ...TabID) *Stack {
	s := NewStack(DefaultLimit)
	s.Load(State{Entries: ids, Cursor: pos})
	return s
}

func assertStack(t *testing.T, s *Stack, want []TabID, pos int) {
	t.Helper()
	got := s.State()
	if len(want) == 0 {
		want = []TabID{}
	}
	if !reflect.DeepEqual(got.Entries, want) || got.Cursor != pos {
		t.Errorf("got entries=%v cursor=%d, want entries=%v cursor=%d", got.Entries, got.Cursor, want, pos)
	}
}

func TestNewStackIsEmpty(t *testing.T) {
	s := NewStack(0)
	if s.Cursor() != -1 || s.Len() != 0 {
		t.Fatalf("expected empty stack with cursor -1, got len=%d cursor=%d", s.Len(), s.Cursor())
	}
	if s.Limit() != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, s.Limit())
	}
	if _, ok := s.Current(); ok {
		t.Error("Current should report false on an empty stack")
	}
	if s.CanGoBack() || s.CanGoForward() {
		t.Error("empty stack should not allow navigation")
	}
}

func TestVisitTruncatesForwardHistory(t *testing.T) {
	s := stackOf(1, 1, 2, 3, 4)
	if !s.Visit(9) {
		t.Fatal("expected Visit to modify the stack")
	}
	assertStack(t, s, []TabID{1, 2, 9}, 2)
}

func TestVisitCurrentIsNoop(t *testing.T) {
	s := stackOf(1, 1, 2, 3)
	if s.Visit(2) {
		t.Fatal("re-visiting the current tab should not modify the stack")
	}
	assertStack(t, s, []TabID{1, 2, 3}, 1)
}

func TestVisitAllowsNonAdjacentDuplicates(t *testing.T) {
	s := NewStack(DefaultLimit)
	for _, id := range []TabID{1, 2, 1} {
		s.Visit(id)
	}
	assertStack(t, s, []TabID{1, 2, 1}, 2)
}

func TestVisitEvictsOldest(t *testing.T) {
	s := NewStack(DefaultLimit)
	for i := 1; i <= DefaultLimit+5; i++ {
		s.Visit(TabID(i))
	}
	if s.Len() != DefaultLimit {
		t.Fatalf("expected %d entries, got %d", DefaultLimit, s.Len())
	}
	if s.Cursor() != DefaultLimit-1 {
		t.Errorf("cursor should address the newest visit, got %d", s.Cursor())
	}
	st := s.State()
	if st.Entries[0] != 6 {
		t.Errorf("expected oldest retained visit to be 6, got %d", st.Entries[0])
	}
	if cur, _ := s.Current(); cur != TabID(DefaultLimit+5) {
		t.Errorf("expected current %d, got %d", DefaultLimit+5, cur)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		entries []TabID
		pos     int
		remove  TabID
		want    []TabID
		wantPos int
		changed bool
	}{
		{"at cursor", []TabID{1, 2, 3}, 1, 2, []TabID{1, 3}, 0, true},
		{"before cursor", []TabID{1, 2, 3}, 2, 1, []TabID{2, 3}, 1, true},
		{"after cursor", []TabID{1, 2, 3}, 0, 3, []TabID{1, 2}, 0, true},
		{"first slot at cursor", []TabID{1, 2, 3}, 0, 1, []TabID{2, 3}, 0, true},
		{"only first duplicate", []TabID{1, 2, 1}, 2, 1, []TabID{2, 1}, 1, true},
		{"last entry", []TabID{7}, 0, 7, nil, -1, true},
		{"missing", []TabID{1, 2}, 1, 5, []TabID{1, 2}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stackOf(tt.pos, tt.entries...)
			if got := s.Remove(tt.remove); got != tt.changed {
				t.Errorf("Remove returned %v, want %v", got, tt.changed)
			}
			assertStack(t, s, tt.want, tt.wantPos)
		})
	}
}

func TestBackForward(t *testing.T) {
	s := stackOf(2, 1, 2, 3)

	if id, ok := s.Back(); !ok || id != 2 {
		t.Fatalf("Back = %d, %v", id, ok)
	}
	if id, ok := s.Back(); !ok || id != 1 {
		t.Fatalf("Back = %d, %v", id, ok)
	}
	if _, ok := s.Back(); ok {
		t.Fatal("Back at the first entry should fail")
	}
	if id, ok := s.Forward(); !ok || id != 2 {
		t.Fatalf("Forward = %d, %v", id, ok)
	}
	if id, ok := s.Forward(); !ok || id != 3 {
		t.Fatalf("Forward = %d, %v", id, ok)
	}
	if _, ok := s.Forward(); ok {
		t.Fatal("Forward at the last entry should fail")
	}
	assertStack(t, s, []TabID{1, 2, 3}, 2)
}

func TestLoadClampsCursor(t *testing.T) {
	tests := []struct {
		name string
		in   State
		pos  int
	}{
		{"past end", State{Entries: []TabID{1, 2}, Cursor: 5}, 1},
		{"negative", State{Entries: []TabID{1, 2}, Cursor: -1}, 0},
		{"empty", State{Cursor: 3}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStack(DefaultLimit)
			s.Load(tt.in)
			if s.Cursor() != tt.pos {
				t.Errorf("cursor = %d, want %d", s.Cursor(), tt.pos)
			}
		})
	}
}

func TestLoadKeepsNewestWithinLimit(t *testing.T) {
	s := NewStack(3)
	s.Load(State{Entries: []TabID{1, 2, 3, 4, 5}, Cursor: 3})
	assertStack(t, s, []TabID{3, 4, 5}, 1)
}

func TestRetainClampsCursor(t *testing.T) {
	s := stackOf(3, 1, 2, 3, 4)
	dropped := s.Retain(func(id TabID) bool { return id < 3 })
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	assertStack(t, s, []TabID{1, 2}, 1)
}

func TestStateIsACopy(t *testing.T) {
	s := stackOf(0, 1, 2)
	st := s.State()
	st.Entries[0] = 99
	if cur, _ := s.Current(); cur != 1 {
		t.Error("mutating a State snapshot changed the stack")
	}
}

func TestDropCurrent(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		forward bool
		next    TabID
		ok      bool
		want    []TabID
		wantPos int
	}{
		{"back to previous", 2, false, 2, true, []TabID{1, 2, 4}, 1},
		{"forward to next", 1, true, 3, true, []TabID{1, 3, 4}, 1},
		{"back from first", 0, false, 0, false, []TabID{2, 3, 4}, 0},
		{"forward from last", 3, true, 0, false, []TabID{1, 2, 3}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stackOf(tt.pos, 1, 2, 3, 4)
			next, ok := s.dropCurrent(tt.forward)
			if next != tt.next || ok != tt.ok {
				t.Errorf("dropCurrent = %d, %v, want %d, %v", next, ok, tt.next, tt.ok)
			}
			assertStack(t, s, tt.want, tt.wantPos)
		})
	}

	s := stackOf(0, 1)
	if _, ok := s.dropCurrent(false); ok {
		t.Error("dropping the only entry should report no neighbour")
	}
	assertStack(t, s, nil, -1)
}
