// Package driver is the bridge between the host and a sound driver. A driver
// is reached through the Device interface, which takes a function number and
// the control block and returns the driver's two result registers.
//
// The Bridge type wraps a Device with the ten named driver functions. It is
// responsible for pointing the control block at the correct resource before
// each call and for refusing calls the device is not ready for.
package driver

import (
	"errors"
	"fmt"

	"github.com/jetsetilly/sci0play/control"
)

// Function selects the driver operation. Function numbers are fixed by the
// driver interface.
type Function uint16

// List of valid Function values.
const (
	GetDeviceInfo  Function = 0
	InitDevice     Function = 2
	ShutdownDevice Function = 4
	LoadSound      Function = 6
	ServiceTick    Function = 8
	SetVolume      Function = 10
	FadeOut        Function = 12
	StopSound      Function = 14
	PauseSound     Function = 16
	SeekSound      Function = 18
)

func (fn Function) String() string {
	switch fn {
	case GetDeviceInfo:
		return "get device info"
	case InitDevice:
		return "init device"
	case ShutdownDevice:
		return "shutdown device"
	case LoadSound:
		return "load sound"
	case ServiceTick:
		return "service tick"
	case SetVolume:
		return "set volume"
	case FadeOut:
		return "fade out"
	case StopSound:
		return "stop sound"
	case PauseSound:
		return "pause sound"
	case SeekSound:
		return "seek sound"
	}
	return fmt.Sprintf("unknown function (%d)", uint16(fn))
}

// Valid returns true if the function number is one of the ten driver
// functions.
func (fn Function) Valid() bool {
	return fn <= SeekSound && fn%2 == 0
}

// Result is the pair of values returned by the driver in the AX and CX
// registers.
type Result struct {
	AX uint16
	CX uint16
}

// Primary returns AX as a signed value.
func (r Result) Primary() int16 {
	return int16(r.AX)
}

// Secondary returns CX as a signed value.
func (r Result) Secondary() int16 {
	return int16(r.CX)
}

// ErrorCode is the value of AX returned by InitDevice on failure.
const ErrorCode int16 = -1

// Device is a sound driver. Call must be synchronous and the device must not
// retain the control block after returning.
type Device interface {
	Call(fn Function, blk *control.Block) (Result, error)
	Label() string
}

// Sentinel errors returned by the Bridge.
var (
	// the driver reported an error
	Rejection = errors.New("driver rejection")

	// InitDevice returned the error code
	InitFailed = fmt.Errorf("%w: init device failed", Rejection)

	// LoadSound returned a state other than control.StateValid
	LoadFailed = fmt.Errorf("%w: load sound failed", Rejection)

	// a function was called before the device was initialised or before a
	// sound was loaded
	NotReady = errors.New("device not ready")
)
