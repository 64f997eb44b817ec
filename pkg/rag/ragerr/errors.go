// Package ragerr holds the error taxonomy of the chat pipeline.
package ragerr

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrRemoteQuery marks a failed or malformed similarity/completion call.
	ErrRemoteQuery = errors.New("remote query failure")
	// ErrRemoteTimeout marks a remote call that exceeded its deadline.
	ErrRemoteTimeout = errors.New("remote call timed out")
	// ErrEmptyRetrieval is logged, never returned to the user as a failure.
	ErrEmptyRetrieval = errors.New("no chunks found for query")
	// ErrUnsupportedModel is returned for a model id outside the catalogue.
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
)

// RemoteError wraps a failure of one of the remote operators
type RemoteError struct {
	Op  string // "embed", "similarity", "complete", "summarize"
	Err error
}

// Remote wraps err as a RemoteError for op. Nil stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the taxonomy sentinels
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemoteTimeout:
		return errors.Is(e.Err, context.DeadlineExceeded)
	case ErrRemoteQuery:
		return true
	}
	return false
}

// IsTimeout reports whether err came from an expired deadline
func IsTimeout(err error) bool {
	return errors.Is(err, ErrRemoteTimeout) || errors.Is(err, context.DeadlineExceeded)
}
