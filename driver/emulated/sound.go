package emulated

import (
	"bytes"
	"fmt"
)

// layout of an SCI0 sound resource body
const (
	// byte zero is non-zero if the resource has a digital sample
	offDigital = 0

	// sixteen pairs of bytes follow: the number of voices the channel
	// requires and a mask of the devices that play the channel
	offChannels = 1
	numChannels = 16

	// the event stream begins immediately after the header
	HeaderLen = offChannels + numChannels*2
)

// event stream values
const (
	// a delta time byte with this value waits 240 ticks and is followed by
	// another delta time byte
	deltaExtend      = 0xf8
	deltaExtendTicks = 240

	// status byte that ends the event stream
	endOfTrack = 0xfc

	// channel 15 carries control events. a program change on channel 15 to
	// this value marks the loop point. any other program change value is
	// reported as a cue in the signal field
	controlChannel = 15
	loopMarker     = 127

	sysex    = 0xf0
	sysexEnd = 0xf7
)

// length of the data that follows a status byte
func dataLen(status uint8) int {
	switch status & 0xf0 {
	case 0xc0, 0xd0:
		return 1
	case 0x80, 0x90, 0xa0, 0xb0, 0xe0:
		return 2
	}
	return 0
}

// Channel is an entry in the header of a sound resource.
type Channel struct {
	Voices  uint8
	Devices uint8
}

// Event is a single entry in the event stream of a sound resource.
type Event struct {
	Delta  int
	Status uint8
	Data   []uint8
}

// Sound describes an SCI0 sound resource.
type Sound struct {
	Digital  bool
	Channels [numChannels]Channel
	Events   []Event
}

// Encode returns the sound as a resource file, including the two byte
// resource preamble. The end of track marker is added.
func (snd Sound) Encode() ([]uint8, error) {
	var b bytes.Buffer

	// resource type 0x84 (sound) with no additional header
	b.Write([]uint8{0x84, 0x00})

	if snd.Digital {
		b.WriteByte(2)
	} else {
		b.WriteByte(0)
	}
	for _, c := range snd.Channels {
		b.WriteByte(c.Voices)
		b.WriteByte(c.Devices)
	}

	var running uint8
	for i, e := range snd.Events {
		if e.Delta < 0 {
			return nil, fmt.Errorf("emulated: event %d: negative delta", i)
		}
		if e.Status < 0x80 {
			return nil, fmt.Errorf("emulated: event %d: invalid status byte (%#02x)", i, e.Status)
		}
		if e.Status != sysex && len(e.Data) != dataLen(e.Status) {
			return nil, fmt.Errorf("emulated: event %d: %d data bytes for status %#02x", i, len(e.Data), e.Status)
		}

		d := e.Delta
		for d >= deltaExtendTicks {
			b.WriteByte(deltaExtend)
			d -= deltaExtendTicks
		}
		b.WriteByte(uint8(d))

		if e.Status != running || e.Status == sysex {
			b.WriteByte(e.Status)
		}
		running = e.Status
		b.Write(e.Data)
		if e.Status == sysex {
			b.WriteByte(sysexEnd)
			running = 0
		}
	}

	b.WriteByte(0)
	b.WriteByte(endOfTrack)

	return b.Bytes(), nil
}

// Polyphony returns the number of voices required by channels played on any
// of the devices in mask.
func (snd Sound) Polyphony(mask uint8) int {
	var n int
	for _, c := range snd.Channels {
		if c.Devices&mask != 0 {
			n += int(c.Voices)
		}
	}
	return n
}
