package control_test

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/test"
)

func TestReset(t *testing.T) {
	var blk control.Block
	blk.Scratch[3] = 0xffff
	blk.Signal = 5

	blk.Reset(15)
	test.ExpectEquality(t, blk.Scratch, [7]uint16{})
	test.ExpectEquality(t, blk.Faded, control.NotFaded)
	test.ExpectEquality(t, blk.Position, uint16(33))
	test.ExpectEquality(t, blk.State, control.StateInvalid)
	test.ExpectEquality(t, blk.Signal, int16(0))
	test.ExpectEquality(t, blk.Volume, uint16(15))
	test.ExpectEquality(t, blk.FadeFinished(), false)
	test.ExpectEquality(t, blk.Looped(), false)

	blk.Reset(99)
	test.ExpectEquality(t, blk.Volume, uint16(control.MaxVolume))
	blk.Reset(-1)
	test.ExpectEquality(t, blk.Volume, uint16(0))
}

func TestLayout(t *testing.T) {
	blk := control.Block{
		Scratch:  [7]uint16{0x0100, 0x0302, 0x0504, 0x0706, 0x0f0e, 0x1312, 0x1514},
		Faded:    -1,
		Position: 0x0d0c,
		State:    control.StateValid,
		Signal:   control.SignalLoop,
		Volume:   0x000f,
	}
	blk.SetResource(0x1d1c, 0x1b1a, 0x0200)

	b, err := blk.MarshalBinary()
	test.DemandEquality(t, err, nil)
	test.DemandEquality(t, len(b), control.Size)

	u16 := func(off int) uint16 {
		return binary.LittleEndian.Uint16(b[off:])
	}

	test.ExpectEquality(t, u16(control.OffScratch0), uint16(0x0100))
	test.ExpectEquality(t, u16(control.OffScratch3), uint16(0x0706))
	test.ExpectEquality(t, u16(control.OffResourcePtr), uint16(0x021a))
	test.ExpectEquality(t, u16(control.OffFaded), uint16(0xffff))
	test.ExpectEquality(t, u16(control.OffPosition), uint16(0x0d0c))
	test.ExpectEquality(t, u16(control.OffScratch4), uint16(0x0f0e))
	test.ExpectEquality(t, u16(control.OffState), uint16(0x0001))
	test.ExpectEquality(t, u16(control.OffScratch5), uint16(0x1312))
	test.ExpectEquality(t, u16(control.OffScratch6), uint16(0x1514))
	test.ExpectEquality(t, u16(control.OffSignal), uint16(0xffff))
	test.ExpectEquality(t, u16(control.OffVolume), uint16(0x000f))
	test.ExpectEquality(t, u16(control.OffResourceOff), uint16(0x1b1a))
	test.ExpectEquality(t, u16(control.OffResourceSeg), uint16(0x1d1c))

	var c control.Block
	test.ExpectSuccess(t, c.UnmarshalBinary(b))
	test.ExpectEquality(t, c, blk)
	test.ExpectEquality(t, c.Looped(), true)
}

func TestUnmarshalShort(t *testing.T) {
	var blk control.Block
	test.ExpectFailure(t, blk.UnmarshalBinary(make([]byte, control.Size-1)))
}
