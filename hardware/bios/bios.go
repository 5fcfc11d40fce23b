// Package bios contains the parts of the PC BIOS that the system timer
// depends on: the tick counter in the BIOS data area and the default IRQ 0
// handler that maintains it.
package bios

import (
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/hardware/pic"
)

// locations in the BIOS data area
var (
	TickCount = memory.Address{Seg: 0x0040, Off: 0x006c}
	Midnight  = memory.Address{Seg: 0x0040, Off: 0x0070}
)

// the number of timer ticks in 24 hours at the BIOS rate
const ticksPerDay = 0x1800b0

// Ports is the I/O interface the timer handler needs to acknowledge the
// interrupt controller.
type Ports interface {
	Out(port uint16, data uint8) error
}

// BIOS state held in the BIOS data area.
type BIOS struct {
	mem *memory.Memory
}

// Create a BIOS using the supplied memory for its data area.
func Create(mem *memory.Memory) *BIOS {
	b := &BIOS{mem: mem}
	b.mem.Write32(TickCount, 0)
	b.mem.Write(Midnight, 0)
	return b
}

func (b *BIOS) Label() string {
	return "BIOS"
}

// Ticks returns the value of the tick counter in the BIOS data area.
func (b *BIOS) Ticks() uint32 {
	return b.mem.Read32(TickCount)
}

// TimerHandler returns the default IRQ 0 handler. It advances the tick
// counter, setting the midnight flag when the counter passes 24 hours, and
// then sends a non-specific EOI to the interrupt controller.
func (b *BIOS) TimerHandler(p Ports) func() {
	return func() {
		t := b.mem.Read32(TickCount) + 1
		if t >= ticksPerDay {
			t = 0
			b.mem.Write(Midnight, 1)
		}
		b.mem.Write32(TickCount, t)
		_ = p.Out(pic.PortCommand, pic.EOI)
	}
}
