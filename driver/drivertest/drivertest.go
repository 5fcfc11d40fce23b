// Package drivertest provides a scripted driver.Device that records every
// call made to it.
package drivertest

import (
	"sync"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/driver"
)

// Device is a scripted driver. The exported configuration fields should be
// set before the first call.
type Device struct {
	crit sync.Mutex

	// values returned by GetDeviceInfo
	Patch     int16
	Polyphony uint16

	// AX returned by InitDevice
	InitResult int16

	// state returned by LoadSound
	LoadState int16

	// the loop signal is raised on every LoopEvery service calls
	LoopEvery int

	// the fade completes after this many service calls following FadeOut
	FadeTicks int

	calls  []driver.Function
	blocks []control.Block

	serviced int
	fading   bool
	faded    int
}

// New returns a Device that accepts everything, needs no patch, loops every
// five ticks and fades out in three.
func New() *Device {
	return &Device{
		Patch:      -1,
		Polyphony:  8,
		InitResult: 0,
		LoadState:  control.StateValid,
		LoopEvery:  5,
		FadeTicks:  3,
	}
}

func (dev *Device) Label() string {
	return "drivertest"
}

// Call implements the driver.Device interface.
func (dev *Device) Call(fn driver.Function, blk *control.Block) (driver.Result, error) {
	dev.crit.Lock()
	defer dev.crit.Unlock()

	dev.calls = append(dev.calls, fn)
	dev.blocks = append(dev.blocks, *blk)

	var r driver.Result

	switch fn {
	case driver.GetDeviceInfo:
		r.AX = uint16(dev.Patch)
		r.CX = dev.Polyphony
	case driver.InitDevice:
		r.AX = uint16(dev.InitResult)
	case driver.LoadSound:
		blk.State = dev.LoadState
		r.AX = uint16(dev.LoadState)
	case driver.ServiceTick:
		if dev.fading {
			dev.faded++
			if dev.faded >= dev.FadeTicks {
				blk.Faded = control.FadeComplete
			}
		} else {
			dev.serviced++
			if dev.LoopEvery > 0 && dev.serviced%dev.LoopEvery == 0 {
				blk.Signal = control.SignalLoop
			}
		}
	case driver.FadeOut:
		dev.fading = true
	}

	return r, nil
}

// Calls returns the functions called so far, in order.
func (dev *Device) Calls() []driver.Function {
	dev.crit.Lock()
	defer dev.crit.Unlock()
	return append([]driver.Function(nil), dev.calls...)
}

// Blocks returns a copy of the control block as it was received by each
// call.
func (dev *Device) Blocks() []control.Block {
	dev.crit.Lock()
	defer dev.crit.Unlock()
	return append([]control.Block(nil), dev.blocks...)
}

// Count returns the number of times fn has been called.
func (dev *Device) Count(fn driver.Function) int {
	dev.crit.Lock()
	defer dev.crit.Unlock()
	var n int
	for _, c := range dev.calls {
		if c == fn {
			n++
		}
	}
	return n
}
