// Package pic is an emulation of the master 8259A programmable interrupt
// controller, as far as it is needed by the system timer.
//
// Only the operations a timer interrupt handler uses are emulated: raising a
// request line, acknowledging it (moving it into service), the non-specific
// end-of-interrupt command and the interrupt mask register. An interrupt
// request for a line that is still in service is not delivered. A handler
// that fails to send EOI therefore blocks its own line, which is the
// behaviour a replacement handler must avoid.
package pic

import (
	"fmt"
	"sync"
)

// I/O ports of the master PIC
const (
	PortCommand = 0x20
	PortData    = 0x21
)

// the non-specific end-of-interrupt command written to PortCommand
const EOI = 0x20

// VectorBase is the interrupt vector of IRQ 0 as programmed by the BIOS
const VectorBase = 0x08

// PIC is the master interrupt controller.
type PIC struct {
	crit sync.Mutex

	// interrupt request register
	irr uint8

	// in-service register
	isr uint8

	// interrupt mask register
	imr uint8

	// number of requests that could not be delivered because the line was
	// masked or still in service
	dropped [8]int
}

// Create a new PIC with all lines unmasked.
func Create() *PIC {
	return &PIC{}
}

func (p *PIC) Label() string {
	return "PIC"
}

func (p *PIC) Status() string {
	p.crit.Lock()
	defer p.crit.Unlock()
	return fmt.Sprintf("%s: irr=%08b isr=%08b imr=%08b", p.Label(), p.irr, p.isr, p.imr)
}

// Raise asserts the request line for irq. The return value is true if the
// request can be delivered to the CPU. A request that can be delivered must be
// followed by a call to Acknowledge().
func (p *PIC) Raise(irq int) bool {
	p.crit.Lock()
	defer p.crit.Unlock()

	b := uint8(1) << irq
	if p.imr&b != 0 || p.isr&b != 0 {
		p.dropped[irq]++
		return false
	}
	p.irr |= b
	return true
}

// Acknowledge moves irq from the request register to the in-service
// register. It returns the interrupt vector for the line.
func (p *PIC) Acknowledge(irq int) uint8 {
	p.crit.Lock()
	defer p.crit.Unlock()

	b := uint8(1) << irq
	p.irr &^= b
	p.isr |= b
	return VectorBase + uint8(irq)
}

// InService returns true if irq is waiting for an end-of-interrupt.
func (p *PIC) InService(irq int) bool {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.isr&(uint8(1)<<irq) != 0
}

// Dropped returns the number of requests for irq that were not delivered.
func (p *PIC) Dropped(irq int) int {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.dropped[irq]
}

// Read implements the port read for PortData (the mask register). Reads from
// the command port return the request register.
func (p *PIC) Read(port uint16) (uint8, error) {
	p.crit.Lock()
	defer p.crit.Unlock()

	switch port {
	case PortCommand:
		return p.irr, nil
	case PortData:
		return p.imr, nil
	}
	return 0, fmt.Errorf("pic: not a pic port (%#04x)", port)
}

// Write implements port writes. The only command recognised on PortCommand is
// the non-specific EOI, which clears the highest priority in-service line.
func (p *PIC) Write(port uint16, data uint8) error {
	p.crit.Lock()
	defer p.crit.Unlock()

	switch port {
	case PortCommand:
		if data != EOI {
			return fmt.Errorf("pic: unsupported command (%#02x)", data)
		}
		for i := range 8 {
			b := uint8(1) << i
			if p.isr&b != 0 {
				p.isr &^= b
				break
			}
		}
		return nil
	case PortData:
		p.imr = data
		return nil
	}
	return fmt.Errorf("pic: not a pic port (%#04x)", port)
}
