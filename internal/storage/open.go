package storage

import (
	"fmt"
	"io"

	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenHistoryStore opens the tab history store for the given backend in
// dataDir. The returned closer releases the underlying database, if any.
func OpenHistoryStore(backend, dataDir string) (tabhistory.Store, io.Closer, error) {
	switch backend {
	case BackendSQLite, "":
		db, err := OpenDB(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return NewTabHistoryStore(db), db, nil
	case BackendJSON:
		fs, err := NewHistoryFileStore(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
