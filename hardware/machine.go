package hardware

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/sci0play/hardware/bios"
	"github.com/jetsetilly/sci0play/hardware/clocks"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/hardware/pic"
	"github.com/jetsetilly/sci0play/hardware/pit"
	"github.com/jetsetilly/sci0play/logger"
)

// Handler is an interrupt service routine. Handlers run with interrupts
// disabled and must not call CLI() or STI().
type Handler func()

// the IRQ line of the system timer
const TimerIRQ = 0

// TimerVector is the interrupt vector of the system timer (INT 8h).
const TimerVector = pic.VectorBase + TimerIRQ

// Machine is the emulated PC: memory, BIOS, interrupt controller, interval
// timer and the interrupt vector table.
type Machine struct {
	Mem  *memory.Memory
	BIOS *bios.BIOS
	PIC  *pic.PIC
	PIT  *pit.PIT

	// the CPU interrupt flag. the mutex is held while interrupts are disabled
	// and while a handler is running. interrupts raised while it is held are
	// delivered once it is released
	intr sync.Mutex

	// the interrupt vector table. only accessed with intr held
	vectors [256]Handler

	// halt wakes on any interrupt. buffered so that an interrupt arriving
	// between the caller's last check and the call to Halt() is not missed
	wake chan bool

	// number of interrupts dispatched
	interrupts atomic.Uint64
}

// Create returns a machine in the state the BIOS leaves it: the PIT running
// at the native rate with the BIOS timer handler installed on INT 8h.
func Create() *Machine {
	m := &Machine{
		Mem:  memory.Create(),
		PIC:  pic.Create(),
		PIT:  pit.Create(),
		wake: make(chan bool, 1),
	}
	m.BIOS = bios.Create(m.Mem)
	m.vectors[TimerVector] = m.BIOS.TimerHandler(m)

	m.PIT.OnReprogram = func(reload uint16) {
		logger.Logf(logger.Allow, "pit", "counter 0 reload %#04x (%.4fHz)", reload, clocks.Rate(reload))
	}

	return m
}

func (m *Machine) Label() string {
	return "machine"
}

func (m *Machine) Status() string {
	var s strings.Builder
	s.WriteString(m.PIT.Status())
	s.WriteString("\n")
	s.WriteString(m.PIC.Status())
	s.WriteString("\n")
	s.WriteString(m.Mem.Status())
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%s: ticks=%d", m.BIOS.Label(), m.BIOS.Ticks()))
	return s.String()
}

// CLI disables interrupts. It blocks while a handler is running.
func (m *Machine) CLI() {
	m.intr.Lock()
}

// STI enables interrupts.
func (m *Machine) STI() {
	m.intr.Unlock()
}

// GetVector returns the handler for interrupt n. Must be called between CLI()
// and STI().
func (m *Machine) GetVector(n uint8) Handler {
	return m.vectors[n]
}

// SetVector installs the handler for interrupt n. Must be called between
// CLI() and STI().
func (m *Machine) SetVector(n uint8, h Handler) {
	m.vectors[n] = h
}

// Out writes data to an I/O port.
func (m *Machine) Out(port uint16, data uint8) error {
	switch port {
	case pic.PortCommand, pic.PortData:
		return m.PIC.Write(port, data)
	case pit.PortCounter0, pit.PortControl:
		return m.PIT.Write(port, data)
	}
	return fmt.Errorf("machine: write to unmapped port %#04x", port)
}

// In reads data from an I/O port.
func (m *Machine) In(port uint16) (uint8, error) {
	switch port {
	case pic.PortCommand, pic.PortData:
		return m.PIC.Read(port)
	case pit.PortCounter0:
		return m.PIT.Read(port)
	}
	return 0, fmt.Errorf("machine: read from unmapped port %#04x", port)
}

func (m *Machine) irq(line int) {
	if !m.PIC.Raise(line) {
		return
	}

	m.intr.Lock()
	v := m.PIC.Acknowledge(line)
	if h := m.vectors[v]; h != nil {
		h()
	} else {
		logger.Logf(logger.Allow, "machine", "no handler for vector %#02x", v)
	}
	m.intr.Unlock()

	m.interrupts.Add(1)

	select {
	case m.wake <- true:
	default:
	}
}

// Interrupts returns the number of interrupts that have been dispatched.
func (m *Machine) Interrupts() uint64 {
	return m.interrupts.Load()
}

// Halt blocks until an interrupt has been dispatched or the context is done.
func (m *Machine) Halt(ctx context.Context) error {
	select {
	case <-m.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step advances the machine by the number of PIT input clock cycles,
// dispatching any timer interrupts that occur.
func (m *Machine) Step(cycles uint64) {
	n := m.PIT.Step(cycles)
	for range n {
		m.irq(TimerIRQ)
	}
}

// Run advances the machine in real time until the context is done.
func (m *Machine) Run(ctx context.Context) {
	m.PIT.Run(ctx, func() {
		m.irq(TimerIRQ)
	})
}
