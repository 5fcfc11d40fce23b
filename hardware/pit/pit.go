// Package pit is an emulation of counter 0 of the 8253 programmable interval
// timer. Counter 0 drives IRQ 0, the system timer.
//
// The counter is programmed through the control port and the counter data
// port in the same way as the real chip. For example, programming the counter
// with a divisor in lo/hi access mode:
//
//	pit.Write(pit.PortControl, 0x34)
//	pit.Write(pit.PortCounter0, uint8(divisor))
//	pit.Write(pit.PortCounter0, uint8(divisor>>8))
//
// The counter is advanced with Step(), which is deterministic, or by Run(),
// which paces the counter against the wall clock.
package pit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jetsetilly/sci0play/hardware/clocks"
)

// I/O ports of the PIT. counters 1 and 2 are not emulated
const (
	PortCounter0 = 0x40
	PortControl  = 0x43
)

// access modes in bits 4 and 5 of the control word
const (
	accessLatch = 0b00
	accessLo    = 0b01
	accessHi    = 0b10
	accessLoHi  = 0b11
)

// the resolution of the real-time pacing in Run()
const resolution = time.Millisecond

// PIT is counter 0 of the programmable interval timer.
type PIT struct {
	crit sync.Mutex

	// the programmed reload value. zero means 0x10000
	reload uint16

	// current value of the counter
	count uint32

	// counter mode and access mode from the most recent control word
	mode   uint8
	access uint8

	// lo/hi access toggles between the two bytes. the lo byte is held in
	// pending until the hi byte arrives
	hiByte  bool
	pending uint8

	// latched count for reading
	latched   bool
	latch     uint16
	readHiNxt bool

	// called whenever the counter is reloaded with a new value. called with
	// the critical section held so must not call back into the PIT
	OnReprogram func(reload uint16)
}

// Create returns a PIT in the state the BIOS leaves it: rate generator mode
// with a reload value of zero (approximately 18.2Hz).
func Create() *PIT {
	return &PIT{
		reload: 0,
		count:  clocks.MaxDivisor,
		mode:   3,
		access: accessLoHi,
	}
}

func (p *PIT) Label() string {
	return "PIT"
}

func (p *PIT) Status() string {
	p.crit.Lock()
	defer p.crit.Unlock()
	return fmt.Sprintf("%s: mode=%d reload=%#04x count=%d rate=%.4fHz", p.Label(),
		p.mode, p.reload, p.count, clocks.Rate(p.reload))
}

// Reload returns the programmed reload value of counter 0.
func (p *PIT) Reload() uint16 {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.reload
}

// Rate returns the output frequency of counter 0 in Hz.
func (p *PIT) Rate() float64 {
	p.crit.Lock()
	defer p.crit.Unlock()
	return clocks.Rate(p.reload)
}

func divisor(reload uint16) uint32 {
	if reload == 0 {
		return clocks.MaxDivisor
	}
	return uint32(reload)
}

func (p *PIT) load(v uint16) {
	p.reload = v
	p.count = divisor(v)
	if p.OnReprogram != nil {
		p.OnReprogram(v)
	}
}

// Write implements port writes to the control port and counter 0.
func (p *PIT) Write(port uint16, data uint8) error {
	p.crit.Lock()
	defer p.crit.Unlock()

	switch port {
	case PortControl:
		if data>>6 != 0 {
			return fmt.Errorf("pit: counter %d is not emulated", data>>6)
		}
		access := (data >> 4) & 0b11
		if access == accessLatch {
			p.latched = true
			p.latch = uint16(p.count)
			p.readHiNxt = false
			return nil
		}
		p.access = access
		p.mode = (data >> 1) & 0b111
		if data&0x01 != 0 {
			return fmt.Errorf("pit: bcd counting is not emulated")
		}
		p.hiByte = false
		return nil

	case PortCounter0:
		switch p.access {
		case accessLo:
			p.load(uint16(data))
		case accessHi:
			p.load(uint16(data) << 8)
		case accessLoHi:
			if !p.hiByte {
				p.pending = data
				p.hiByte = true
			} else {
				p.load(uint16(data)<<8 | uint16(p.pending))
				p.hiByte = false
			}
		}
		return nil
	}

	return fmt.Errorf("pit: not a pit port (%#04x)", port)
}

// Read implements port reads from counter 0. If the counter has been latched
// the latched value is returned, otherwise the live count.
func (p *PIT) Read(port uint16) (uint8, error) {
	p.crit.Lock()
	defer p.crit.Unlock()

	if port != PortCounter0 {
		return 0, fmt.Errorf("pit: not a readable pit port (%#04x)", port)
	}

	v := uint16(p.count)
	if p.latched {
		v = p.latch
	}

	var b uint8
	if p.readHiNxt {
		b = uint8(v >> 8)
		p.latched = false
	} else {
		b = uint8(v)
	}
	if p.access == accessLoHi || p.latched {
		p.readHiNxt = !p.readHiNxt
	}
	return b, nil
}

// Step advances counter 0 by the number of input clock cycles. It returns
// the number of times the counter reached zero, each of which is a pulse on
// the IRQ 0 line.
func (p *PIT) Step(cycles uint64) int {
	p.crit.Lock()
	defer p.crit.Unlock()

	if cycles < uint64(p.count) {
		p.count -= uint32(cycles)
		return 0
	}

	cycles -= uint64(p.count)
	d := uint64(divisor(p.reload))
	pulses := 1 + int(cycles/d)
	p.count = uint32(d - cycles%d)
	return pulses
}

// Run paces counter 0 against the wall clock until the context is done. The
// pulse function is called once for every time the counter reaches zero.
//
// Input cycles are accumulated as a fractional value so that no time is lost
// to rounding between steps.
func (p *PIT) Run(ctx context.Context, pulse func()) {
	tck := time.NewTicker(resolution)
	defer tck.Stop()

	var accumulation float64
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tck.C:
			accumulation += now.Sub(last).Seconds() * clocks.PIT
			last = now

			i, f := math.Modf(accumulation)
			accumulation = f

			n := p.Step(uint64(i))
			for range n {
				pulse()
			}
		}
	}
}
