// Package control is the control block shared between the host and a sound
// driver. The host fills in the block and hands it to the driver on every
// call. The driver reads the fields it needs, updates the fields it reports
// and returns.
//
// The layout of the block is dictated by the driver and is reproduced
// exactly by MarshalBinary(). Field offsets are listed as constants for
// adapters that need to address individual fields in emulated memory.
package control

import (
	"encoding/binary"
	"fmt"
)

// Size of the control block in bytes.
const Size = 0x1e

// Byte offsets of the fields in the control block.
const (
	OffScratch0    = 0x00
	OffScratch1    = 0x02
	OffScratch2    = 0x04
	OffScratch3    = 0x06
	OffResourcePtr = 0x08
	OffFaded       = 0x0a
	OffPosition    = 0x0c
	OffScratch4    = 0x0e
	OffState       = 0x10
	OffScratch5    = 0x12
	OffScratch6    = 0x14
	OffSignal      = 0x16
	OffVolume      = 0x18
	OffResourceOff = 0x1a
	OffResourceSeg = 0x1c
)

// Values of the State field.
const (
	StateValid   int16 = 1
	StateInvalid int16 = 3
)

// SignalLoop is the value of the Signal field when the sound has reached its
// loop point.
const SignalLoop int16 = -1

// Values of the Faded field. Any nonzero value means the sound has not
// finished fading.
const (
	FadeComplete int16 = 0
	NotFaded     int16 = -1
)

// the default playback position. the driver ignores it until a seek is
// requested
const defaultPosition = 33

// MaxVolume is the loudest volume a driver accepts.
const MaxVolume = 15

// Block is the control block. The Scratch fields belong to the driver and
// are never interpreted by the host.
type Block struct {
	Scratch [7]uint16

	// near pointer to ResourceOff. the driver follows this to find the far
	// pointer to the active resource
	ResourcePtr uint16

	Faded    int16
	Position uint16
	State    int16
	Signal   int16
	Volume   uint16

	// far pointer to the body of the active resource
	ResourceOff uint16
	ResourceSeg uint16
}

// Reset prepares the block for the first driver call.
func (blk *Block) Reset(volume int) {
	*blk = Block{
		Faded:    NotFaded,
		Position: defaultPosition,
		State:    StateInvalid,
		Signal:   0,
		Volume:   uint16(min(max(volume, 0), MaxVolume)),
	}
}

// SetResource points the block at the body of a resource. heapOffset is the
// offset of the block itself in the data segment handed to the driver; the
// ResourcePtr field is set to the address of the ResourceOff field.
func (blk *Block) SetResource(seg uint16, off uint16, heapOffset uint16) {
	blk.ResourceOff = off
	blk.ResourceSeg = seg
	blk.ResourcePtr = heapOffset + OffResourceOff
}

// Looped returns true if the driver has signalled the loop point.
func (blk *Block) Looped() bool {
	return blk.Signal == SignalLoop
}

// FadeFinished returns true if the driver reports the fade out as complete.
func (blk *Block) FadeFinished() bool {
	return blk.Faded == FadeComplete
}

func (blk *Block) String() string {
	return fmt.Sprintf("faded=%d pos=%d state=%d signal=%d vol=%d res=%04x:%04x",
		blk.Faded, blk.Position, blk.State, blk.Signal, blk.Volume, blk.ResourceSeg, blk.ResourceOff)
}

// wire is the control block in driver layout. encoding/binary packs the
// fields in declaration order with no padding
type wire struct {
	Scratch0    uint16
	Scratch1    uint16
	Scratch2    uint16
	Scratch3    uint16
	ResourcePtr uint16
	Faded       int16
	Position    uint16
	Scratch4    uint16
	State       int16
	Scratch5    uint16
	Scratch6    uint16
	Signal      int16
	Volume      uint16
	ResourceOff uint16
	ResourceSeg uint16
}

// MarshalBinary returns the control block image in driver layout.
func (blk *Block) MarshalBinary() ([]byte, error) {
	w := wire{
		Scratch0:    blk.Scratch[0],
		Scratch1:    blk.Scratch[1],
		Scratch2:    blk.Scratch[2],
		Scratch3:    blk.Scratch[3],
		ResourcePtr: blk.ResourcePtr,
		Faded:       blk.Faded,
		Position:    blk.Position,
		Scratch4:    blk.Scratch[4],
		State:       blk.State,
		Scratch5:    blk.Scratch[5],
		Scratch6:    blk.Scratch[6],
		Signal:      blk.Signal,
		Volume:      blk.Volume,
		ResourceOff: blk.ResourceOff,
		ResourceSeg: blk.ResourceSeg,
	}

	b := make([]byte, Size)
	if _, err := binary.Encode(b, binary.LittleEndian, w); err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	return b, nil
}

// UnmarshalBinary replaces the contents of the block with an image in driver
// layout.
func (blk *Block) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return fmt.Errorf("control: image is %d bytes but must be %d", len(data), Size)
	}

	var w wire
	if _, err := binary.Decode(data[:Size], binary.LittleEndian, &w); err != nil {
		return fmt.Errorf("control: %w", err)
	}

	*blk = Block{
		Scratch:     [7]uint16{w.Scratch0, w.Scratch1, w.Scratch2, w.Scratch3, w.Scratch4, w.Scratch5, w.Scratch6},
		ResourcePtr: w.ResourcePtr,
		Faded:       w.Faded,
		Position:    w.Position,
		State:       w.State,
		Signal:      w.Signal,
		Volume:      w.Volume,
		ResourceOff: w.ResourceOff,
		ResourceSeg: w.ResourceSeg,
	}
	return nil
}
