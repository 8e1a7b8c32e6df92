package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidPNR         = errors.New("pnr must be exactly 10 digits")
	ErrSessionNotFound    = errors.New("no pnr session found")
	ErrUnknownPolicy      = errors.New("unknown change detection policy")
	ErrLockHeld           = errors.New("lock is held by another worker")
	ErrSessionReplaced    = errors.New("pnr session was re-registered")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// ErrFetch and ErrNotify are matched by errors.Is against *FetchError and *NotifyError.
	ErrFetch  = errors.New("status fetch failed")
	ErrNotify = errors.New("notification delivery failed")
)

type FetchErrorKind string

const (
	FetchNetwork       FetchErrorKind = "network"
	FetchUpstream      FetchErrorKind = "upstream"
	FetchPageStructure FetchErrorKind = "page_structure"
	FetchNoData        FetchErrorKind = "no_data"
)

// FetchError reports why a PNR status could not be retrieved.
type FetchError struct {
	Kind   FetchErrorKind
	Reason string
	Err    error
}

func NewFetchError(kind FetchErrorKind, reason string, cause error) *FetchError {
	return &FetchError{Kind: kind, Reason: reason, Err: cause}
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Kind, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// NotifyError wraps a failed delivery to the chat transport.
type NotifyError struct {
	ChatID int64
	Err    error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify chat %d: %v", e.ChatID, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

func (e *NotifyError) Is(target error) bool { return target == ErrNotify }
