// Package booking drives the three acquisition channels (direct seat
// booking, time-windowed pre-reservation, lottery entry) as ordered step
// sequences with exactly one guarded terminal write each.
package booking

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrWrongStep          = errors.New("operation not valid for the current step")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrAlreadySubmitted   = errors.New("terminal action already completed")
	ErrSeatSold           = errors.New("seat is sold")
	ErrSeatUnknown        = errors.New("unknown seat")
	ErrNoSeatsSelected    = errors.New("no seats selected")
	ErrSectionNotOffered  = errors.New("section is not open for application")
)

// ErrLoginRequired is returned at a wizard's authentication gate. ReturnTo
// preserves the original destination so the caller can come back after
// logging in.
type ErrLoginRequired struct {
	ReturnTo string
}

func (e *ErrLoginRequired) Error() string {
	return fmt.Sprintf("login required (return to %s)", e.ReturnTo)
}
