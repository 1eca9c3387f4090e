package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nightlyone/lockfile"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

// historyFile is the on-disk layout of the JSON history store.
type historyFile struct {
	Entries []tabhistory.TabID `json:"entries"`
	Cursor  int                `json:"cursor"`
	SavedAt time.Time          `json:"saved_at"`
}

// HistoryFileStore persists the tab history stack as a JSON file. Writes
// take a pid lock file next to it, so a running browser and the history
// CLI do not interleave their renames.
type HistoryFileStore struct {
	mu   sync.Mutex
	path string
	lock lockfile.Lockfile
}

// NewHistoryFileStore creates a JSON history store in the given data directory.
func NewHistoryFileStore(dataDir string) (*HistoryFileStore, error) {
	dir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	lock, err := lockfile.New(filepath.Join(dir, "tab_history.lock"))
	if err != nil {
		return nil, fmt.Errorf("creating history lock: %w", err)
	}
	return &HistoryFileStore{
		path: filepath.Join(dir, "tab_history.json"),
		lock: lock,
	}, nil
}

// Path returns the file location.
func (hs *HistoryFileStore) Path() string {
	return hs.path
}

// Load reads the saved stack. A missing file reports false.
func (hs *HistoryFileStore) Load(_ context.Context) (tabhistory.State, bool, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	data, err := os.ReadFile(hs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return tabhistory.State{Cursor: -1}, false, nil
		}
		return tabhistory.State{}, false, fmt.Errorf("reading history: %w", err)
	}

	var f historyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return tabhistory.State{}, false, fmt.Errorf("parsing history: %w", err)
	}
	return tabhistory.State{Entries: f.Entries, Cursor: f.Cursor}, true, nil
}

// Save writes st to disk, replacing the previous file.
func (hs *HistoryFileStore) Save(_ context.Context, st tabhistory.State) error {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if err := hs.lock.TryLock(); err != nil {
		return fmt.Errorf("locking %s: %w", hs.lock, err)
	}
	defer hs.lock.Unlock()

	f := historyFile{
		Entries: st.Entries,
		Cursor:  st.Cursor,
		SavedAt: time.Now(),
	}
	if f.Entries == nil {
		f.Entries = []tabhistory.TabID{}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tmp := hs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	if err := os.Rename(tmp, hs.path); err != nil {
		return fmt.Errorf("replacing history: %w", err)
	}
	return nil
}
