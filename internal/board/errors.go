package board

import (
	"errors"
	"fmt"
)

// UnavailableError means the board could not be reached or refused the
// request. Sync treats it as a failure of the single item being processed.
type UnavailableError struct {
	Op  string
	ID  string
	Err error
}

func (e *UnavailableError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("board unavailable (%s %s): %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("board unavailable (%s): %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// NotFoundError means the item id no longer exists on the board.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("board item %s not found", e.ID)
}

// IsUnavailable reports whether err is an *UnavailableError.
func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
