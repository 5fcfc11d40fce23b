package driver

import (
	"fmt"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/logger"
	"github.com/jetsetilly/sci0play/resource"
)

// Bridge exposes the driver functions of a Device by name.
type Bridge struct {
	dev Device
	blk *control.Block

	// location of the control block. the driver is given the offset of the
	// ResourceOff field relative to this address
	heap memory.Address

	// the sound resource accepted by LoadSound
	sound *resource.Buffer

	initialised bool
	loaded      bool
}

// NewBridge returns a Bridge for the device using the control block located
// at heap.
func NewBridge(dev Device, blk *control.Block, heap memory.Address) *Bridge {
	return &Bridge{
		dev:  dev,
		blk:  blk,
		heap: heap,
	}
}

func (br *Bridge) Label() string {
	return br.dev.Label()
}

// Initialised returns true if InitDevice has succeeded and ShutdownDevice has
// not yet been called.
func (br *Bridge) Initialised() bool {
	return br.initialised
}

// point the control block at the body of the resource. a nil resource is
// pointed at by a null far pointer
func (br *Bridge) pointAt(res *resource.Buffer) {
	if res == nil {
		br.blk.SetResource(0, 0, br.heap.Off)
		return
	}
	body := res.Body()
	br.blk.SetResource(body.Seg, body.Off, br.heap.Off)
}

func (br *Bridge) call(fn Function) (Result, error) {
	r, err := br.dev.Call(fn, br.blk)
	if err != nil {
		return r, fmt.Errorf("%s: %s: %w", br.dev.Label(), fn, err)
	}
	return r, nil
}

func (br *Bridge) ready() error {
	if !br.initialised || !br.loaded {
		return NotReady
	}
	return nil
}

// Info queries the device. It returns the number of the patch resource the
// device needs, or resource.NoPatch, and the number of voices.
func (br *Bridge) Info() (int, int, error) {
	r, err := br.call(GetDeviceInfo)
	if err != nil {
		return 0, 0, err
	}
	logger.Logf(logger.Allow, "bridge", "device info: patch=%d polyphony=%d", r.Primary(), r.Secondary())
	return int(r.Primary()), int(r.Secondary()), nil
}

// Init initialises the device with the patch resource. The patch can be nil
// if the device does not need one.
func (br *Bridge) Init(patch *resource.Buffer) error {
	br.pointAt(patch)
	r, err := br.call(InitDevice)
	if err != nil {
		return err
	}
	if r.Primary() == ErrorCode {
		return fmt.Errorf("%w: %s returned %#04x", InitFailed, br.dev.Label(), r.AX)
	}
	br.initialised = true
	logger.Log(logger.Allow, "bridge", "device initialised")
	return nil
}

// Shutdown closes the device. The device must be initialised.
func (br *Bridge) Shutdown() error {
	if !br.initialised {
		return fmt.Errorf("%w: %s", NotReady, ShutdownDevice)
	}
	br.initialised = false
	br.loaded = false
	br.sound = nil
	if _, err := br.call(ShutdownDevice); err != nil {
		return err
	}
	logger.Log(logger.Allow, "bridge", "device shutdown")
	return nil
}

// Load prepares the device to play the sound resource. The state reported
// by the driver is returned along with an error if the state is not
// control.StateValid.
func (br *Bridge) Load(snd *resource.Buffer) (int16, error) {
	if !br.initialised {
		return control.StateInvalid, fmt.Errorf("%w: %s", NotReady, LoadSound)
	}
	br.pointAt(snd)
	r, err := br.call(LoadSound)
	if err != nil {
		return control.StateInvalid, err
	}
	state := r.Primary()
	if state != control.StateValid {
		return state, fmt.Errorf("%w: %s: state %d", LoadFailed, snd.Name, state)
	}
	br.sound = snd
	br.loaded = true
	logger.Logf(logger.Allow, "bridge", "%s loaded", snd.Name)
	return state, nil
}

// Service gives the device one tick of the loaded sound.
func (br *Bridge) Service() error {
	if err := br.ready(); err != nil {
		return fmt.Errorf("%w: %s", err, ServiceTick)
	}
	br.pointAt(br.sound)
	_, err := br.call(ServiceTick)
	return err
}

// SetVolume sets the global volume of the device in the range 0 to 15.
func (br *Bridge) SetVolume(volume int) error {
	if err := br.ready(); err != nil {
		return fmt.Errorf("%w: %s", err, SetVolume)
	}
	br.blk.Volume = uint16(min(max(volume, 0), control.MaxVolume))
	_, err := br.call(SetVolume)
	return err
}

// FadeOut starts fading out the sound. The fade is complete when the device
// sets the Faded field of the control block to zero.
func (br *Bridge) FadeOut() error {
	if err := br.ready(); err != nil {
		return fmt.Errorf("%w: %s", err, FadeOut)
	}
	_, err := br.call(FadeOut)
	return err
}

// Stop the sound.
func (br *Bridge) Stop() error {
	if err := br.ready(); err != nil {
		return fmt.Errorf("%w: %s", err, StopSound)
	}
	_, err := br.call(StopSound)
	return err
}

// Pause the sound.
func (br *Bridge) Pause() error {
	if err := br.ready(); err != nil {
		return fmt.Errorf("%w: %s", err, PauseSound)
	}
	_, err := br.call(PauseSound)
	return err
}

// Seek sets the playback position and signal of the sound.
func (br *Bridge) Seek(position uint16, signal int16) error {
	if err := br.ready(); err != nil {
		return fmt.Errorf("%w: %s", err, SeekSound)
	}
	br.blk.Position = position
	br.blk.Signal = signal
	_, err := br.call(SeekSound)
	return err
}
