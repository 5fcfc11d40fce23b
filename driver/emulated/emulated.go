// Package emulated is a software sound device that plays SCI0 sound
// resources. It implements the same ten functions as a sound driver and
// keeps all of its playback state in the private fields of the control block,
// so it can be run directly or through the realmode calling convention.
package emulated

import (
	"fmt"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/driver"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/logger"
)

// Synth is the sound generator played by the device.
type Synth interface {
	NoteOn(channel uint8, note uint8, velocity uint8)
	NoteOff(channel uint8, note uint8)
	Volume(level uint8)
	Silence()
	Polyphony() int
}

// DefaultMask is the device mask used to select channels from the header of
// a sound resource.
const DefaultMask = 0x01

// use of the private fields of the control block
const (
	scratchWait = iota
	scratchLoop
	scratchRunning
	scratchLoopRunning
	scratchFadeLevel
	scratchFadeCount
	scratchFlags
)

// bits in scratchFlags
const (
	flagPaused = 1 << iota
	flagStopped
	flagFading
)

// AX values
const (
	noPatch = 0xffff
	failed  = 0xffff
)

// number of ticks between each step of a fade
const fadeInterval = 2

// limit on events processed by a single tick
const maxEventsPerTick = 1024

// Device is the software sound device.
type Device struct {
	mem   *memory.Memory
	synth Synth

	// channels in the sound resource are played if their device byte has
	// any of these bits set
	Mask uint8

	initialised bool
}

// New returns a device that reads resources from mem and plays them on synth.
func New(mem *memory.Memory, synth Synth) *Device {
	return &Device{
		mem:   mem,
		synth: synth,
		Mask:  DefaultMask,
	}
}

func (dev *Device) Label() string {
	return "emulated"
}

func (dev *Device) stream(blk *control.Block) stream {
	return stream{
		mem:  dev.mem,
		base: memory.Address{Seg: blk.ResourceSeg, Off: blk.ResourceOff},
	}
}

func (dev *Device) enabled(blk *control.Block, channel uint8) bool {
	s := dev.stream(blk)
	return s.read(uint16(offChannels+int(channel)*2+1))&dev.Mask != 0
}

// Call implements the driver.Device interface.
func (dev *Device) Call(fn driver.Function, blk *control.Block) (driver.Result, error) {
	var r driver.Result

	switch fn {
	case driver.GetDeviceInfo:
		// the device has no patch resource
		r.AX = noPatch
		r.CX = uint16(dev.synth.Polyphony())

	case driver.InitDevice:
		dev.synth.Silence()
		dev.synth.Volume(control.MaxVolume)
		dev.initialised = true

	case driver.ShutdownDevice:
		dev.synth.Silence()
		dev.initialised = false

	case driver.LoadSound:
		r.AX = uint16(dev.load(blk))

	case driver.ServiceTick:
		dev.service(blk)

	case driver.SetVolume:
		dev.synth.Volume(uint8(min(blk.Volume, control.MaxVolume)))

	case driver.FadeOut:
		blk.Scratch[scratchFadeLevel] = min(blk.Volume, control.MaxVolume)
		blk.Scratch[scratchFadeCount] = 0
		blk.Scratch[scratchFlags] |= flagFading
		blk.Faded = 1

	case driver.StopSound:
		dev.synth.Silence()
		blk.Scratch[scratchFlags] |= flagStopped
		dev.rewind(blk, HeaderLen, 0)

	case driver.PauseSound:
		blk.Scratch[scratchFlags] ^= flagPaused
		if blk.Scratch[scratchFlags]&flagPaused != 0 {
			dev.synth.Silence()
		}

	case driver.SeekSound:
		if !dev.seek(blk) {
			r.AX = failed
		}

	default:
		return r, fmt.Errorf("%s: unsupported function (%d)", dev.Label(), fn)
	}

	return r, nil
}

// set the position to pos, which must be the position of a delta time, and
// prepare the wait for the event that follows
func (dev *Device) rewind(blk *control.Block, pos uint16, running uint8) {
	blk.Position = pos
	blk.Scratch[scratchRunning] = uint16(running)
	w, _ := dev.stream(blk).delta(pos)
	blk.Scratch[scratchWait] = uint16(min(w, 0xffff))
}

func (dev *Device) load(blk *control.Block) int16 {
	if !dev.initialised {
		blk.State = control.StateInvalid
		return blk.State
	}

	s := dev.stream(blk)
	if err := s.walk(func(uint16, uint8) bool { return true }); err != nil {
		logger.Logf(logger.Allow, dev.Label(), "sound rejected: %v", err)
		blk.State = control.StateInvalid
		return blk.State
	}

	var voices int
	for c := range uint8(numChannels) {
		if dev.enabled(blk, c) {
			voices += int(s.read(uint16(offChannels + int(c)*2)))
		}
	}
	logger.Logf(logger.Allow, dev.Label(), "sound loaded from %s (%d voices required)", s.base, voices)

	blk.Scratch = [len(blk.Scratch)]uint16{}
	blk.Scratch[scratchLoop] = HeaderLen
	dev.rewind(blk, HeaderLen, 0)
	dev.synth.Silence()

	blk.State = control.StateValid
	return blk.State
}

func (dev *Device) seek(blk *control.Block) bool {
	if blk.State != control.StateValid {
		return false
	}

	target := max(blk.Position, HeaderLen)

	var found bool
	var running uint8
	err := dev.stream(blk).walk(func(pos uint16, r uint8) bool {
		if pos == target {
			found = true
			running = r
		}
		return pos < target
	})
	if err != nil || !found {
		// the previous position has been overwritten. resume from the loop
		// point
		logger.Logf(logger.Allow, dev.Label(), "seek to %d is not an event boundary", target)
		dev.rewind(blk, uint16(blk.Scratch[scratchLoop]), uint8(blk.Scratch[scratchLoopRunning]))
		return false
	}

	dev.synth.Silence()
	blk.Scratch[scratchFlags] &^= flagStopped
	dev.rewind(blk, target, running)
	return true
}

func (dev *Device) fade(blk *control.Block) {
	blk.Scratch[scratchFadeCount]++
	if blk.Scratch[scratchFadeCount] < fadeInterval {
		return
	}
	blk.Scratch[scratchFadeCount] = 0

	if blk.Scratch[scratchFadeLevel] > 0 {
		blk.Scratch[scratchFadeLevel]--
	}
	dev.synth.Volume(uint8(blk.Scratch[scratchFadeLevel]))

	if blk.Scratch[scratchFadeLevel] == 0 {
		dev.synth.Silence()
		blk.Scratch[scratchFlags] &^= flagFading
		blk.Scratch[scratchFlags] |= flagStopped
		blk.Faded = control.FadeComplete
	}
}

func (dev *Device) service(blk *control.Block) {
	if !dev.initialised || blk.State != control.StateValid {
		return
	}

	// a fade runs to completion even when the sound is paused or stopped
	flags := blk.Scratch[scratchFlags]
	if flags&flagFading != 0 {
		dev.fade(blk)
		if blk.FadeFinished() {
			return
		}
	}
	if flags&(flagPaused|flagStopped) != 0 {
		return
	}

	if blk.Scratch[scratchWait] > 0 {
		blk.Scratch[scratchWait]--
		if blk.Scratch[scratchWait] > 0 {
			return
		}
	}

	s := dev.stream(blk)
	running := uint8(blk.Scratch[scratchRunning])

	for range maxEventsPerTick {
		_, p := s.delta(blk.Position)
		e, err := s.event(p, running)
		if err != nil {
			logger.Logf(logger.Allow, dev.Label(), "stopped at %d: %v", blk.Position, err)
			dev.synth.Silence()
			blk.Scratch[scratchFlags] |= flagStopped
			return
		}

		if e.status == endOfTrack {
			dev.synth.Silence()
			blk.Signal = control.SignalLoop
			dev.rewind(blk, blk.Scratch[scratchLoop], uint8(blk.Scratch[scratchLoopRunning]))
			return
		}

		running = runningStatus(e.status)
		dev.execute(blk, e, running)

		dev.rewind(blk, e.next, running)
		if blk.Scratch[scratchWait] > 0 {
			return
		}
	}
}

func (dev *Device) execute(blk *control.Block, e event, running uint8) {
	ch := e.channel()

	switch e.status & 0xf0 {
	case 0x80:
		if dev.enabled(blk, ch) {
			dev.synth.NoteOff(ch, e.data[0])
		}
	case 0x90:
		if dev.enabled(blk, ch) {
			dev.synth.NoteOn(ch, e.data[0], e.data[1])
		}
	case 0xc0:
		if ch != controlChannel {
			return
		}
		if e.data[0] == loopMarker {
			blk.Scratch[scratchLoop] = e.next
			blk.Scratch[scratchLoopRunning] = uint16(running)
		} else {
			blk.Signal = int16(e.data[0])
		}
	}
}
