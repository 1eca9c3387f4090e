package tabhistory

import "errors"

var (
	// ErrTabNotFound is returned by a TabController when the tab has closed.
	ErrTabNotFound = errors.New("tab not found")

	// ErrNoActiveTab is returned by a TabController when no tab is active.
	ErrNoActiveTab = errors.New("no active tab")

	// ErrUnknownCommand is returned by Tracker.Command for unrecognised names.
	ErrUnknownCommand = errors.New("unknown command")
)
