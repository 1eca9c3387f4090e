package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/nightlyone/lockfile"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

func TestHistoryStoresRoundTrip(t *testing.T) {
	for _, backend := range []string{BackendSQLite, BackendJSON} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			store, closer, err := OpenHistoryStore(backend, t.TempDir())
			if err != nil {
				t.Fatalf("OpenHistoryStore: %v", err)
			}
			defer closer.Close()

			if _, ok, err := store.Load(ctx); err != nil || ok {
				t.Fatalf("fresh store Load = ok %v, err %v; want false, nil", ok, err)
			}

			want := tabhistory.State{Entries: []tabhistory.TabID{4, 8, 4, 15}, Cursor: 2}
			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, ok, err := store.Load(ctx)
			if err != nil || !ok {
				t.Fatalf("Load = ok %v, err %v", ok, err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load = %+v, want %+v", got, want)
			}

			// A shorter stack replaces the longer one entirely.
			shorter := tabhistory.State{Entries: []tabhistory.TabID{23}, Cursor: 0}
			if err := store.Save(ctx, shorter); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, _, _ = store.Load(ctx)
			if !reflect.DeepEqual(got, shorter) {
				t.Errorf("Load = %+v, want %+v", got, shorter)
			}

			empty := tabhistory.State{Cursor: -1}
			if err := store.Save(ctx, empty); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, ok, err = store.Load(ctx)
			if err != nil || !ok {
				t.Fatalf("Load after empty save = ok %v, err %v", ok, err)
			}
			if len(got.Entries) != 0 || got.Cursor != -1 {
				t.Errorf("Load = %+v, want empty with cursor -1", got)
			}
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := OpenDB(dir)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	want := tabhistory.State{Entries: []tabhistory.TabID{1, 2}, Cursor: 1}
	if err := NewTabHistoryStore(db).Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	db.Close()

	db, err = OpenDB(dir)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer db.Close()

	got, ok, err := NewTabHistoryStore(db).Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load = ok %v, err %v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestHistoryFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewHistoryFileStore(dir)
	if err != nil {
		t.Fatalf("NewHistoryFileStore: %v", err)
	}
	if err := os.WriteFile(fs.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := fs.Load(context.Background()); err == nil {
		t.Error("expected an error for a corrupt history file")
	}
}

func TestHistoryFileStoreRespectsForeignLock(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewHistoryFileStore(dir)
	if err != nil {
		t.Fatalf("NewHistoryFileStore: %v", err)
	}

	// The parent process (the test runner) is alive, so its lock is held.
	lockPath := filepath.Join(dir, "tab_history.lock")
	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getppid())+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st := tabhistory.State{Entries: []tabhistory.TabID{1}, Cursor: 0}
	if err := fs.Save(ctx, st); !errors.Is(err, lockfile.ErrBusy) {
		t.Fatalf("Save under a foreign lock = %v, want ErrBusy", err)
	}

	if err := os.Remove(lockPath); err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lock file should be released after Save, stat err = %v", err)
	}
}

func TestOpenHistoryStoreUnknownBackend(t *testing.T) {
	if _, _, err := OpenHistoryStore("redis", t.TempDir()); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if !reflect.DeepEqual(*cfg, func() Config { c := DefaultConfig(); c.path = path; return c }()) {
		t.Errorf("got %+v, want defaults", *cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults were not written: %v", err)
	}
}

func TestLoadConfigValidates(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.json")
	os.WriteFile(path, []byte(`{"store":"json","history_limit":0,"theme":"nord"}`), 0o644)
	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Store != BackendJSON || cfg.Theme != "nord" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.HistoryLimit != tabhistory.DefaultLimit {
		t.Errorf("zero history limit should default to %d, got %d", tabhistory.DefaultLimit, cfg.HistoryLimit)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"store":"redis"}`), 0o644)
	if _, err := LoadConfigFrom(bad); err == nil {
		t.Error("expected an error for an unknown store backend")
	}
}
