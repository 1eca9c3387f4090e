package tabhistory

// DefaultLimit is the number of visits a Stack keeps before evicting the oldest.
const DefaultLimit = 50

// TabID identifies a browser tab. Zero is never a valid id.
type TabID int

// WindowID identifies the window that owns a tab.
type WindowID int

// State is the persisted form of a Stack.
type State struct {
	Entries []TabID `json:"entries"`
	Cursor  int     `json:"cursor"`
}

// Stack is a bounded back/forward sequence of tab visits.
//
// The cursor addresses the currently displayed visit. It is -1 exactly when
// the stack is empty and otherwise stays within [0, Len()).
type Stack struct {
	entries []TabID
	pos     int
	limit   int
}

// NewStack creates an empty stack holding at most limit visits.
func NewStack(limit int) *Stack {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Stack{
		entries: nil,
		pos:     -1,
		limit:   limit,
	}
}

// Current returns the visit under the cursor.
func (s *Stack) Current() (TabID, bool) {
	if s.pos < 0 || s.pos >= len(s.entries) {
		return 0, false
	}
	return s.entries[s.pos], true
}

// Visit records id as a fresh visit. Forward entries are dropped and the
// oldest visits are evicted once the limit is exceeded. Visiting the tab
// under the cursor again changes nothing; the return value reports whether
// the stack was modified.
func (s *Stack) Visit(id TabID) bool {
	if cur, ok := s.Current(); ok && cur == id {
		return false
	}

	// If we're not at the end, truncate forward history.
	if s.pos < len(s.entries)-1 {
		s.entries = s.entries[:s.pos+1]
	}
	s.entries = append(s.entries, id)
	s.pos = len(s.entries) - 1
	s.evict()
	return true
}

// Append adds id after the last entry without touching forward history and
// moves the cursor onto it.
func (s *Stack) Append(id TabID) {
	s.entries = append(s.entries, id)
	s.pos = len(s.entries) - 1
	s.evict()
}

func (s *Stack) evict() {
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = append([]TabID(nil), s.entries[over:]...)
		s.pos = len(s.entries) - 1
	}
}

// Remove excises the first occurrence of id. The cursor keeps addressing the
// same visit when an earlier slot goes away, and falls back to the previous
// visit when its own slot is removed.
func (s *Stack) Remove(id TabID) bool {
	idx := s.Index(id)
	if idx < 0 {
		return false
	}
	s.removeAt(idx)
	if idx <= s.pos {
		s.pos--
	}
	s.clamp()
	return true
}

// dropCurrent removes the slot under the cursor and moves to its neighbour
// in the direction of travel, returning that visit. Without a neighbour the
// cursor is clamped around the gap and ok is false.
func (s *Stack) dropCurrent(forward bool) (TabID, bool) {
	at := s.pos
	s.removeAt(at)
	next := at - 1
	if forward {
		next = at
	}
	if next < 0 || next >= len(s.entries) {
		s.clamp()
		return 0, false
	}
	s.pos = next
	return s.entries[next], true
}

func (s *Stack) removeAt(idx int) {
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
}

// clamp forces the cursor back into range after entries shrink.
func (s *Stack) clamp() {
	if len(s.entries) == 0 {
		s.pos = -1
		return
	}
	if s.pos < 0 {
		s.pos = 0
	}
	if s.pos >= len(s.entries) {
		s.pos = len(s.entries) - 1
	}
}

// Index returns the position of the first occurrence of id, or -1.
func (s *Stack) Index(id TabID) int {
	for i, e := range s.entries {
		if e == id {
			return i
		}
	}
	return -1
}

// Back moves one step back. Returns the tab now under the cursor and true if possible.
func (s *Stack) Back() (TabID, bool) {
	if !s.CanGoBack() {
		return 0, false
	}
	s.pos--
	return s.entries[s.pos], true
}

// Forward moves one step forward. Returns the tab now under the cursor and true if possible.
func (s *Stack) Forward() (TabID, bool) {
	if !s.CanGoForward() {
		return 0, false
	}
	s.pos++
	return s.entries[s.pos], true
}

// CanGoBack reports whether there is a previous entry.
func (s *Stack) CanGoBack() bool {
	return s.pos > 0
}

// CanGoForward reports whether there is a next entry.
func (s *Stack) CanGoForward() bool {
	return s.pos < len(s.entries)-1
}

// Cursor returns the cursor position, -1 when empty.
func (s *Stack) Cursor() int {
	return s.pos
}

// Len returns the total number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Limit returns the maximum number of retained entries.
func (s *Stack) Limit() int {
	return s.limit
}

// Clear resets the stack.
func (s *Stack) Clear() {
	s.entries = nil
	s.pos = -1
}

// State returns a copy of the stack suitable for persisting.
func (s *Stack) State() State {
	entries := make([]TabID, len(s.entries))
	copy(entries, s.entries)
	return State{Entries: entries, Cursor: s.pos}
}

// Load replaces the stack contents with st, keeping only the newest visits
// that fit the limit and clamping the cursor into range.
func (s *Stack) Load(st State) {
	entries := st.Entries
	pos := st.Cursor
	if over := len(entries) - s.limit; over > 0 {
		entries = entries[over:]
		pos -= over
	}
	s.entries = append([]TabID(nil), entries...)
	s.pos = pos
	s.clamp()
}

// Retain drops every entry for which keep returns false, preserving the
// order of the survivors. The cursor is clamped, not shifted.
func (s *Stack) Retain(keep func(TabID) bool) int {
	kept := s.entries[:0]
	dropped := 0
	for _, id := range s.entries {
		if keep(id) {
			kept = append(kept, id)
		} else {
			dropped++
		}
	}
	s.entries = kept
	s.clamp()
	return dropped
}
