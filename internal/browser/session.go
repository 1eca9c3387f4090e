package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

// ErrLastTab is returned when closing the only remaining tab.
var ErrLastTab = errors.New("cannot close the last tab")

// EventKind distinguishes tab events.
type EventKind int

const (
	EventActivated EventKind = iota
	EventUpdated
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventActivated:
		return "activated"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports a change to a tab. Status and Active are set for
// EventUpdated only.
type Event struct {
	Kind   EventKind
	TabID  tabhistory.TabID
	Status tabhistory.LoadStatus
	Active bool
}

// Tab is a browser tab.
type Tab struct {
	ID       tabhistory.TabID
	WindowID tabhistory.WindowID
	Title    string
	URL      string
	Status   tabhistory.LoadStatus
	Page     *Page
	Err      error
}

type window struct {
	id     tabhistory.WindowID
	tabs   []tabhistory.TabID
	active int
}

// WindowView is a read-only copy of a window for rendering.
type WindowView struct {
	ID     tabhistory.WindowID
	Tabs   []Tab
	Active int
}

// View is a read-only copy of the whole session for rendering.
type View struct {
	Windows []WindowView
	Focused tabhistory.WindowID
}

// FocusedWindow returns the focused window, if any.
func (v View) FocusedWindow() (WindowView, bool) {
	for _, w := range v.Windows {
		if w.ID == v.Focused {
			return w, true
		}
	}
	return WindowView{}, false
}

// ActiveTab returns the active tab of the focused window.
func (v View) ActiveTab() (Tab, bool) {
	w, ok := v.FocusedWindow()
	if !ok || w.Active < 0 || w.Active >= len(w.Tabs) {
		return Tab{}, false
	}
	return w.Tabs[w.Active], true
}

// Session holds the windows and tabs of the browser. It implements
// tabhistory.TabController and reports tab changes through NextEvent.
//
// Every exported method is safe for concurrent use. Events are queued
// without bound, under the session lock, so they arrive in the order the
// changes were made.
type Session struct {
	mu         sync.Mutex
	windows    []*window
	tabs       map[tabhistory.TabID]*Tab
	focused    tabhistory.WindowID
	nextTab    tabhistory.TabID
	nextWindow tabhistory.WindowID
	width      int

	fetcher *Fetcher
	pages   *lru.Cache[string, *Article] // by requested and final URL

	evMu   sync.Mutex
	queue  []Event
	signal chan struct{}
}

// NewSession creates a session with one window holding one blank tab.
// cacheSize bounds the number of extracted articles kept in memory.
func NewSession(fetcher *Fetcher, cacheSize int) *Session {
	if cacheSize < 1 {
		cacheSize = 50
	}
	pages, _ := lru.New[string, *Article](cacheSize)
	if fetcher == nil {
		fetcher = NewFetcher()
	}

	s := &Session{
		tabs:    make(map[tabhistory.TabID]*Tab),
		fetcher: fetcher,
		pages:   pages,
		signal:  make(chan struct{}, 1),
		width:   80,
	}
	s.mu.Lock()
	s.newWindowLocked()
	s.mu.Unlock()
	return s
}

// SetWidth sets the width pages are rendered at.
func (s *Session) SetWidth(w int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w > 0 {
		s.width = w
	}
}

// NextEvent blocks until a tab event is available or ctx is done.
func (s *Session) NextEvent(ctx context.Context) (Event, error) {
	for {
		s.evMu.Lock()
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.evMu.Unlock()
			return ev, nil
		}
		s.evMu.Unlock()

		select {
		case <-s.signal:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// PendingEvents removes and returns every queued event.
func (s *Session) PendingEvents() []Event {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	evs := s.queue
	s.queue = nil
	return evs
}

func (s *Session) emit(evs ...Event) {
	if len(evs) == 0 {
		return
	}
	s.evMu.Lock()
	s.queue = append(s.queue, evs...)
	s.evMu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Session) newWindowLocked() *Tab {
	s.nextWindow++
	w := &window{id: s.nextWindow}
	s.windows = append(s.windows, w)
	s.focused = w.id
	t := s.newTabLocked(w, 0)
	w.active = 0
	return t
}

func (s *Session) newTabLocked(w *window, at int) *Tab {
	s.nextTab++
	t := &Tab{
		ID:       s.nextTab,
		WindowID: w.id,
		Title:    "New Tab",
		Status:   tabhistory.StatusComplete,
	}
	s.tabs[t.ID] = t
	w.tabs = append(w.tabs[:at], append([]tabhistory.TabID{t.ID}, w.tabs[at:]...)...)
	return t
}

func (s *Session) windowLocked(id tabhistory.WindowID) (*window, int) {
	for i, w := range s.windows {
		if w.id == id {
			return w, i
		}
	}
	return nil, -1
}

func (s *Session) activeLocked() (*Tab, bool) {
	w, _ := s.windowLocked(s.focused)
	if w == nil || w.active < 0 || w.active >= len(w.tabs) {
		return nil, false
	}
	t, ok := s.tabs[w.tabs[w.active]]
	return t, ok
}

func (s *Session) activeID() tabhistory.TabID {
	if t, ok := s.activeLocked(); ok {
		return t.ID
	}
	return 0
}

// OpenTab opens a blank tab after the active tab of the focused window and
// activates it.
func (s *Session) OpenTab() tabhistory.TabID {
	s.mu.Lock()
	w, _ := s.windowLocked(s.focused)
	t := s.newTabLocked(w, w.active+1)
	w.active++
	s.emit(Event{Kind: EventActivated, TabID: t.ID})
	s.mu.Unlock()
	return t.ID
}

// NewWindow opens a window with one blank tab and focuses it.
func (s *Session) NewWindow() tabhistory.TabID {
	s.mu.Lock()
	id := s.newWindowLocked().ID
	s.emit(Event{Kind: EventActivated, TabID: id})
	s.mu.Unlock()
	return id
}

// SelectTab makes id the active tab and focuses its window.
func (s *Session) SelectTab(id tabhistory.TabID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.activeID()
	if err := s.selectLocked(id); err != nil {
		return err
	}
	if before != id {
		s.emit(Event{Kind: EventActivated, TabID: id})
	}
	return nil
}

func (s *Session) selectLocked(id tabhistory.TabID) error {
	t, ok := s.tabs[id]
	if !ok {
		return tabhistory.ErrTabNotFound
	}
	w, _ := s.windowLocked(t.WindowID)
	for i, tid := range w.tabs {
		if tid == id {
			w.active = i
		}
	}
	s.focused = w.id
	return nil
}

// NextTab activates the tab to the right in the focused window, wrapping.
func (s *Session) NextTab() {
	s.cycleTab(1)
}

// PrevTab activates the tab to the left in the focused window, wrapping.
func (s *Session) PrevTab() {
	s.cycleTab(-1)
}

func (s *Session) cycleTab(delta int) {
	s.mu.Lock()
	w, _ := s.windowLocked(s.focused)
	if w == nil || len(w.tabs) < 2 {
		s.mu.Unlock()
		return
	}
	w.active = (w.active + delta + len(w.tabs)) % len(w.tabs)
	s.emit(Event{Kind: EventActivated, TabID: w.tabs[w.active]})
	s.mu.Unlock()
}

// CycleWindow focuses the next window. The user sees a different active
// tab, so this is reported as an activation.
func (s *Session) CycleWindow() {
	s.mu.Lock()
	if len(s.windows) < 2 {
		s.mu.Unlock()
		return
	}
	_, i := s.windowLocked(s.focused)
	s.focused = s.windows[(i+1)%len(s.windows)].id
	s.emit(Event{Kind: EventActivated, TabID: s.activeID()})
	s.mu.Unlock()
}

// CloseTab closes tab id. A window whose last tab closes goes away with it.
// Closing the only tab left in the session fails with ErrLastTab.
func (s *Session) CloseTab(id tabhistory.TabID) error {
	s.mu.Lock()
	t, ok := s.tabs[id]
	if !ok {
		s.mu.Unlock()
		return tabhistory.ErrTabNotFound
	}
	if len(s.tabs) == 1 {
		s.mu.Unlock()
		return ErrLastTab
	}

	before := s.activeID()
	w, wi := s.windowLocked(t.WindowID)
	for i, tid := range w.tabs {
		if tid != id {
			continue
		}
		w.tabs = append(w.tabs[:i], w.tabs[i+1:]...)
		if w.active >= len(w.tabs) {
			w.active = len(w.tabs) - 1
		} else if w.active > i {
			w.active--
		}
		break
	}
	delete(s.tabs, id)

	if len(w.tabs) == 0 {
		s.windows = append(s.windows[:wi], s.windows[wi+1:]...)
		if s.focused == w.id {
			s.focused = s.windows[len(s.windows)-1].id
		}
	}
	s.emit(Event{Kind: EventRemoved, TabID: id})
	if after := s.activeID(); after != before && after != 0 {
		s.emit(Event{Kind: EventActivated, TabID: after})
	}
	s.mu.Unlock()
	return nil
}

// Load fetches rawURL into tab id and renders it. Progress is reported as
// EventUpdated with StatusLoading, then StatusComplete or StatusError.
func (s *Session) Load(ctx context.Context, id tabhistory.TabID, rawURL string) error {
	target := NormalizeURL(rawURL)

	s.mu.Lock()
	t, ok := s.tabs[id]
	if !ok {
		s.mu.Unlock()
		return tabhistory.ErrTabNotFound
	}
	t.URL = target
	t.Status = tabhistory.StatusLoading
	t.Err = nil
	width := s.width
	s.emit(Event{Kind: EventUpdated, TabID: id, Status: tabhistory.StatusLoading, Active: s.activeID() == id})
	s.mu.Unlock()

	page, err := s.fetchPage(ctx, target, width)
	if ctx.Err() != nil {
		// Superseded by a newer load, or shutting down.
		return ctx.Err()
	}

	s.mu.Lock()
	t, ok = s.tabs[id]
	if !ok {
		s.mu.Unlock()
		return tabhistory.ErrTabNotFound
	}
	status := tabhistory.StatusComplete
	if err != nil {
		status = tabhistory.StatusError
		t.Err = err
		t.Title = "Error"
	} else {
		t.Page = page
		t.Title = page.Title
		t.URL = page.URL
	}
	t.Status = status
	s.emit(Event{Kind: EventUpdated, TabID: id, Status: status, Active: s.activeID() == id})
	s.mu.Unlock()
	return err
}

// fetchPage renders target at width. Articles are cached, not pages, so a
// resize re-renders without another fetch.
func (s *Session) fetchPage(ctx context.Context, target string, width int) (*Page, error) {
	if article, ok := s.pages.Get(target); ok {
		return Render(article, width), nil
	}

	result, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	article, err := Extract(result)
	if err != nil {
		return nil, err
	}

	s.pages.Add(target, article)
	if result.FinalURL != target {
		s.pages.Add(result.FinalURL, article)
	}
	return Render(article, width), nil
}

// Snapshot copies the session for rendering.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{Focused: s.focused}
	for _, w := range s.windows {
		wv := WindowView{ID: w.id, Active: w.active}
		for _, id := range w.tabs {
			wv.Tabs = append(wv.Tabs, *s.tabs[id])
		}
		v.Windows = append(v.Windows, wv)
	}
	return v
}

// Lookup returns a copy of tab id.
func (s *Session) Lookup(id tabhistory.TabID) (Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return *t, true
}

func (s *Session) info(t *Tab) tabhistory.TabInfo {
	return tabhistory.TabInfo{
		ID:       t.ID,
		WindowID: t.WindowID,
		Title:    t.Title,
		URL:      t.URL,
		Active:   s.activeID() == t.ID,
	}
}

// Tab implements tabhistory.TabController.
func (s *Session) Tab(_ context.Context, id tabhistory.TabID) (tabhistory.TabInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[id]
	if !ok {
		return tabhistory.TabInfo{}, tabhistory.ErrTabNotFound
	}
	return s.info(t), nil
}

// ActiveTab implements tabhistory.TabController.
func (s *Session) ActiveTab(_ context.Context) (tabhistory.TabInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.activeLocked()
	if !ok {
		return tabhistory.TabInfo{}, tabhistory.ErrNoActiveTab
	}
	return s.info(t), nil
}

// ActivateTab implements tabhistory.TabController. It always reports an
// activation, even when id was already active in its window.
func (s *Session) ActivateTab(_ context.Context, id tabhistory.TabID) error {
	s.mu.Lock()
	t, ok := s.tabs[id]
	if !ok {
		s.mu.Unlock()
		return tabhistory.ErrTabNotFound
	}
	w, _ := s.windowLocked(t.WindowID)
	for i, tid := range w.tabs {
		if tid == id {
			w.active = i
		}
	}
	s.emit(Event{Kind: EventActivated, TabID: id})
	s.mu.Unlock()
	return nil
}

// FocusWindow implements tabhistory.TabController.
func (s *Session) FocusWindow(_ context.Context, id tabhistory.WindowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, _ := s.windowLocked(id); w == nil {
		return fmt.Errorf("window %d: %w", id, tabhistory.ErrTabNotFound)
	}
	s.focused = id
	return nil
}
