package emulated

import (
	"errors"

	"github.com/jetsetilly/sci0play/hardware/memory"
)

// InvalidStream is the reason a sound resource is rejected.
var InvalidStream = errors.New("invalid event stream")

// stream reads the event stream of a sound resource in memory. positions are
// offsets from the start of the resource body
type stream struct {
	mem  *memory.Memory
	base memory.Address
}

func (s stream) read(pos uint16) uint8 {
	return s.mem.Read(s.base.Add(pos))
}

// delta returns the delta time at pos and the position of the event that
// follows it
func (s stream) delta(pos uint16) (int, uint16) {
	var d int
	for {
		b := s.read(pos)
		pos++
		if b != deltaExtend {
			return d + int(b), pos
		}
		d += deltaExtendTicks
		if pos == 0 {
			return d, pos
		}
	}
}

type event struct {
	status uint8
	data   [2]uint8
	next   uint16
}

func (e event) channel() uint8 {
	return e.status & 0x0f
}

// decode the event at pos using the running status if the event has no
// status byte of its own
func (s stream) event(pos uint16, running uint8) (event, error) {
	var e event

	b := s.read(pos)
	if b < 0x80 {
		if running == 0 {
			return e, InvalidStream
		}
		e.status = running
	} else {
		e.status = b
		pos++
	}

	switch e.status {
	case endOfTrack:
		e.next = pos
		return e, nil
	case sysex:
		start := pos
		for s.read(pos) != sysexEnd {
			pos++
			if pos == start {
				return e, InvalidStream
			}
		}
		e.next = pos + 1
		return e, nil
	}

	n := dataLen(e.status)
	for i := range n {
		e.data[i] = s.read(pos)
		if e.data[i] >= 0x80 {
			return e, InvalidStream
		}
		pos++
	}
	e.next = pos
	return e, nil
}

// running status after the event
func runningStatus(status uint8) uint8 {
	if status >= 0xf0 {
		return 0
	}
	return status
}

// walk the stream from the start to the end of track marker, calling visit
// with the position of every delta time and the running status in effect at
// that point. if visit returns false the walk stops early
func (s stream) walk(visit func(pos uint16, running uint8) bool) error {
	pos := uint16(HeaderLen)
	var running uint8

	for {
		if !visit(pos, running) {
			return nil
		}

		_, p := s.delta(pos)
		if p <= pos {
			return InvalidStream
		}

		e, err := s.event(p, running)
		if err != nil {
			return err
		}
		if e.status == endOfTrack {
			return nil
		}
		if e.next <= pos {
			return InvalidStream
		}

		running = runningStatus(e.status)
		pos = e.next
	}
}
