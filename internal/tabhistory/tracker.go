// Package tabhistory keeps a back/forward history of tab activations and
// navigates through it, skipping tabs that have closed since they were
// visited.
//
// A Tracker owns the history. Tab events are fed in through OnActivated,
// OnUpdated and OnRemoved; Back and Forward switch tabs through a
// TabController. Every change is written to a Store on a best-effort basis.
package tabhistory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Command names understood by Tracker.Command.
const (
	CommandBack    = "navigate-back"
	CommandForward = "navigate-forward"
)

// LoadStatus is the loading state reported with a tab update.
type LoadStatus string

const (
	StatusLoading  LoadStatus = "loading"
	StatusComplete LoadStatus = "complete"
	StatusError    LoadStatus = "error"
)

// TabInfo describes a live tab.
type TabInfo struct {
	ID       TabID
	WindowID WindowID
	Title    string
	URL      string
	Active   bool
}

// TabController looks up and switches tabs.
type TabController interface {
	// Tab returns ErrTabNotFound when id no longer exists.
	Tab(ctx context.Context, id TabID) (TabInfo, error)
	// ActiveTab returns ErrNoActiveTab when nothing is focused.
	ActiveTab(ctx context.Context) (TabInfo, error)
	ActivateTab(ctx context.Context, id TabID) error
	FocusWindow(ctx context.Context, id WindowID) error
}

// Store persists the history between runs. Load reports false when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (State, bool, error)
	Save(ctx context.Context, st State) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLimit sets the maximum number of retained visits.
func WithLimit(n int) Option {
	return func(t *Tracker) {
		t.stack = NewStack(n)
	}
}

// WithLogger sets the logger used for store and tab-controller failures.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// Tracker records tab visits and navigates back and forward through them.
//
// The mutex guards only the stack and the pending slot. Calls into the
// TabController and the Store are made without holding it, so other events
// may be handled while a navigation waits on a tab lookup.
type Tracker struct {
	tabs  TabController
	store Store
	log   *slog.Logger

	mu      sync.Mutex
	stack   *Stack
	pending TabID // activation expected from our own navigation, 0 if none
}

// New creates a Tracker with an empty history. Call Restore to rehydrate it.
func New(tabs TabController, store Store, opts ...Option) *Tracker {
	t := &Tracker{
		tabs:  tabs,
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stack: NewStack(DefaultLimit),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore loads the persisted history, drops tabs that no longer exist and
// lines the cursor up with the currently active tab.
func (t *Tracker) Restore(ctx context.Context) {
	var saved State
	if t.store != nil {
		st, ok, err := t.store.Load(ctx)
		switch {
		case err != nil:
			t.log.Warn("loading tab history failed, starting empty", "err", err)
		case ok:
			saved = st
		}
	}

	live := make(map[TabID]bool, len(saved.Entries))
	for _, id := range saved.Entries {
		if _, seen := live[id]; seen {
			continue
		}
		_, err := t.tabs.Tab(ctx, id)
		switch {
		case err == nil:
			live[id] = true
		case errors.Is(err, ErrTabNotFound):
			live[id] = false
		default:
			t.log.Warn("probing restored tab failed, keeping it", "tab", id, "err", err)
			live[id] = true
		}
	}

	t.mu.Lock()
	t.pending = 0
	t.stack.Load(saved)
	dropped := t.stack.Retain(func(id TabID) bool { return live[id] })
	snap := t.stack.State()
	t.mu.Unlock()

	if dropped > 0 {
		t.log.Info("dropped closed tabs from restored history", "count", dropped)
	}
	t.persist(ctx, snap)

	active, err := t.tabs.ActiveTab(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoActiveTab) {
			t.log.Warn("querying active tab failed", "err", err)
		}
		return
	}

	t.mu.Lock()
	if last := t.stack.Len() - 1; last < 0 || t.stack.entries[last] != active.ID {
		t.stack.Append(active.ID)
	} else if idx := t.stack.Index(active.ID); idx >= 0 {
		t.stack.pos = idx
	}
	snap = t.stack.State()
	t.mu.Unlock()

	t.persist(ctx, snap)
}

// OnActivated records a user switching to tab id. An activation that answers
// our own Back or Forward call is swallowed.
func (t *Tracker) OnActivated(ctx context.Context, id TabID) {
	t.mu.Lock()
	if t.pending != 0 {
		expected := t.pending
		t.pending = 0
		if expected == id {
			t.mu.Unlock()
			return
		}
	}
	changed := t.stack.Visit(id)
	snap := t.stack.State()
	t.mu.Unlock()

	if changed {
		t.persist(ctx, snap)
	}
}

// OnUpdated records tab id once it has finished loading while active. This
// catches freshly opened tabs whose activation raced their creation.
func (t *Tracker) OnUpdated(ctx context.Context, id TabID, status LoadStatus, active bool) {
	if status != StatusComplete || !active {
		return
	}

	t.mu.Lock()
	if t.pending == id {
		t.mu.Unlock()
		return
	}
	changed := t.stack.Visit(id)
	snap := t.stack.State()
	t.mu.Unlock()

	if changed {
		t.persist(ctx, snap)
	}
}

// OnRemoved forgets the first recorded visit of a closed tab.
func (t *Tracker) OnRemoved(ctx context.Context, id TabID) {
	t.mu.Lock()
	if t.pending == id {
		t.pending = 0
	}
	changed := t.stack.Remove(id)
	snap := t.stack.State()
	t.mu.Unlock()

	if changed {
		t.persist(ctx, snap)
	}
}

// Back switches to the previous live tab in the history. It does nothing
// when there is no earlier entry.
func (t *Tracker) Back(ctx context.Context) {
	t.navigate(ctx, false)
}

// Forward switches to the next live tab in the history. It does nothing
// when there is no later entry.
func (t *Tracker) Forward(ctx context.Context) {
	t.navigate(ctx, true)
}

// Command runs a named navigation command.
func (t *Tracker) Command(ctx context.Context, name string) error {
	switch name {
	case CommandBack:
		t.Back(ctx)
	case CommandForward:
		t.Forward(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return nil
}

// navigate steps the cursor and activates the tab it lands on. A closed tab
// is dropped and the step repeats from its neighbour; each pass removes one
// entry, so the loop ends.
func (t *Tracker) navigate(ctx context.Context, forward bool) {
	t.mu.Lock()
	var (
		target TabID
		ok     bool
	)
	if forward {
		target, ok = t.stack.Forward()
	} else {
		target, ok = t.stack.Back()
	}
	if !ok {
		t.mu.Unlock()
		return
	}

	for {
		t.pending = target
		snap := t.stack.State()
		t.mu.Unlock()

		t.persist(ctx, snap)

		info, err := t.tabs.Tab(ctx, target)
		if err != nil && !errors.Is(err, ErrTabNotFound) {
			t.log.Warn("resolving history tab failed", "tab", target, "err", err)
			t.clearPending(target)
			return
		}

		t.mu.Lock()
		if t.pending != target {
			// A user activation, or the target's own removal, arrived during
			// the lookup and now owns the cursor.
			changed := err != nil && t.stack.Remove(target)
			snap = t.stack.State()
			t.mu.Unlock()
			if changed {
				t.persist(ctx, snap)
			}
			return
		}
		if err == nil {
			t.mu.Unlock()
			t.activate(ctx, info)
			return
		}

		t.log.Debug("skipping closed tab in history", "tab", target)
		t.pending = 0
		if cur, _ := t.stack.Current(); cur == target {
			target, ok = t.stack.dropCurrent(forward)
		} else {
			t.stack.Remove(target)
			ok = false
		}
		if !ok {
			snap = t.stack.State()
			t.mu.Unlock()
			t.persist(ctx, snap)
			return
		}
	}
}

func (t *Tracker) activate(ctx context.Context, info TabInfo) {
	if err := t.tabs.ActivateTab(ctx, info.ID); err != nil {
		t.log.Warn("activating tab failed", "tab", info.ID, "err", err)
		t.clearPending(info.ID)
		return
	}
	if err := t.tabs.FocusWindow(ctx, info.WindowID); err != nil {
		t.log.Warn("focusing window failed", "window", info.WindowID, "err", err)
	}
}

func (t *Tracker) clearPending(id TabID) {
	t.mu.Lock()
	if t.pending == id {
		t.pending = 0
	}
	t.mu.Unlock()
}

func (t *Tracker) persist(ctx context.Context, st State) {
	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, st); err != nil {
		t.log.Warn("saving tab history failed", "err", err)
	}
}

// State returns a snapshot of the history.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.State()
}

// CanGoBack reports whether Back has an entry to move to.
func (t *Tracker) CanGoBack() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.CanGoBack()
}

// CanGoForward reports whether Forward has an entry to move to.
func (t *Tracker) CanGoForward() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.CanGoForward()
}

// Len returns the number of recorded visits.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.Len()
}

// Clear forgets every visit.
func (t *Tracker) Clear(ctx context.Context) {
	t.mu.Lock()
	t.stack.Clear()
	t.pending = 0
	snap := t.stack.State()
	t.mu.Unlock()

	t.persist(ctx, snap)
}
