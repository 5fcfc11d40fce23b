package player

import (
	"errors"

	"github.com/jetsetilly/sci0play/driver"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/resource"
)

// Outcome codes. These are the exit status of the program.
const (
	Success           = 0
	Failure           = 1
	Unavailable       = 2
	AllocationFailure = 3
	ShortRead         = 5
	InitFailed        = 9
	LoadFailed        = 10
	NotReady          = 11
)

// Outcome returns the outcome code for the error returned by Run() or
// Launch().
func Outcome(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, resource.Unavailable):
		return Unavailable
	case errors.Is(err, memory.AllocationFailure):
		return AllocationFailure
	case errors.Is(err, resource.ShortRead):
		return ShortRead
	case errors.Is(err, driver.InitFailed):
		return InitFailed
	case errors.Is(err, driver.LoadFailed):
		return LoadFailed
	case errors.Is(err, driver.NotReady):
		return NotReady
	}
	return Failure
}
