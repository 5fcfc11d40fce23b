// Package audio produces sound for the software sound device. The Mixer
// renders square wave voices as signed 16bit little-endian mono samples and
// is read by an Output.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// SampleFreq is the rate at which the mixer produces samples.
const SampleFreq = 22050

// Voices is the number of notes that can sound at once.
const Voices = 8

// the amplitude of a single voice at full velocity. chosen so that all voices
// at full velocity do not saturate too badly
const voiceAmplitude = 32768 / 4

type voice struct {
	on      bool
	channel uint8
	note    uint8

	// phase accumulator. the top bit is the square wave
	phase uint32
	step  uint32

	amplitude int32

	// used to steal the oldest voice when all are in use
	started uint64
}

// Mixer is a simple polyphonic square wave synthesiser.
type Mixer struct {
	crit sync.Mutex

	voices [Voices]voice
	clock  uint64

	// master volume in the range 0 to 15
	level uint8

	// samples rendered since creation
	rendered uint64
}

// NewMixer returns a mixer at full volume with no notes sounding.
func NewMixer() *Mixer {
	return &Mixer{
		level: 15,
	}
}

func (mx *Mixer) Label() string {
	return "mixer"
}

func (mx *Mixer) Status() string {
	mx.crit.Lock()
	defer mx.crit.Unlock()
	return fmt.Sprintf("%s: level=%d sounding=%d rendered=%d", mx.Label(), mx.level, mx.sounding(), mx.rendered)
}

func (mx *Mixer) sounding() int {
	var n int
	for _, v := range mx.voices {
		if v.on {
			n++
		}
	}
	return n
}

// Sounding returns the number of voices currently sounding.
func (mx *Mixer) Sounding() int {
	mx.crit.Lock()
	defer mx.crit.Unlock()
	return mx.sounding()
}

// Polyphony returns the number of voices.
func (mx *Mixer) Polyphony() int {
	return Voices
}

// frequency of MIDI note number as a phase step
func step(note uint8) uint32 {
	hz := 440.0 * math.Pow(2, (float64(note)-69)/12)
	return uint32(hz * (1 << 32) / SampleFreq)
}

// NoteOn starts a note. A velocity of zero is the same as NoteOff().
func (mx *Mixer) NoteOn(channel uint8, note uint8, velocity uint8) {
	if velocity == 0 {
		mx.NoteOff(channel, note)
		return
	}

	mx.crit.Lock()
	defer mx.crit.Unlock()

	mx.clock++

	idx := -1
	for i, v := range mx.voices {
		if !v.on || (v.channel == channel && v.note == note) {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = 0
		for i, v := range mx.voices {
			if v.started < mx.voices[idx].started {
				idx = i
			}
		}
	}

	mx.voices[idx] = voice{
		on:        true,
		channel:   channel,
		note:      note,
		step:      step(note),
		amplitude: int32(velocity&0x7f) * voiceAmplitude / 127,
		started:   mx.clock,
	}
}

// NoteOff stops a note.
func (mx *Mixer) NoteOff(channel uint8, note uint8) {
	mx.crit.Lock()
	defer mx.crit.Unlock()

	for i := range mx.voices {
		v := &mx.voices[i]
		if v.on && v.channel == channel && v.note == note {
			v.on = false
		}
	}
}

// Volume sets the master volume. Values above 15 are treated as 15.
func (mx *Mixer) Volume(level uint8) {
	mx.crit.Lock()
	defer mx.crit.Unlock()
	mx.level = min(level, 15)
}

// Silence stops all notes.
func (mx *Mixer) Silence() {
	mx.crit.Lock()
	defer mx.crit.Unlock()
	for i := range mx.voices {
		mx.voices[i].on = false
	}
}

// Read implements the io.Reader interface. Samples are rendered on demand so
// the buffer is always filled to an even number of bytes.
func (mx *Mixer) Read(buf []uint8) (int, error) {
	mx.crit.Lock()
	defer mx.crit.Unlock()

	n := len(buf) / 2
	for s := range n {
		var sum int32
		for i := range mx.voices {
			v := &mx.voices[i]
			if !v.on {
				continue
			}
			if v.phase&0x80000000 == 0 {
				sum += v.amplitude
			} else {
				sum -= v.amplitude
			}
			v.phase += v.step
		}
		sum = sum * int32(mx.level) / 15
		binary.LittleEndian.PutUint16(buf[s*2:], uint16(clip(sum)))
	}
	mx.rendered += uint64(n)

	return n * 2, nil
}
