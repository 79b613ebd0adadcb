// Package repository implements the Data Store: loading and persisting the
// users, movies and showtimes collections. Two backends share the Store
// interface: flat JSON files and a SQL database.
package repository

import (
	"errors"
	"fmt"
)

// ErrFileAccess is matched by every failure to read or write a backing
// resource, including malformed content. Callers treat it as fatal at
// startup.
var ErrFileAccess = errors.New("data store: backing resource unavailable")

// AccessError records which resource failed and how. It matches
// ErrFileAccess through errors.Is and unwraps to the underlying cause.
type AccessError struct {
	Resource string // file path or table name
	Op       string // "read", "decode", "write", ...
	Err      error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("data store: %s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *AccessError) Is(target error) bool { return target == ErrFileAccess }
func (e *AccessError) Unwrap() error        { return e.Err }

func accessErr(resource, op string, err error) error {
	return &AccessError{Resource: resource, Op: op, Err: err}
}
