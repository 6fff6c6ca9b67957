// Package apperr defines sentinel errors shared across application layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrGroupNotFound marks a group id with no matched sentinel pair in
	// the scanned text.
	ErrGroupNotFound = errors.New("group not found")

	// ErrNavigationBusy is returned when a navigation transition is issued
	// while a previous one is still in flight.
	ErrNavigationBusy = errors.New("navigation in progress")

	// ErrEmptyStack is returned by LeaveGroup at root level.
	ErrEmptyStack = errors.New("navigation stack is empty")

	// ErrBridgeClosed marks a content bridge that no longer has a live
	// editor surface behind it.
	ErrBridgeClosed = errors.New("content bridge closed")
)
