package timer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/sci0play/hardware"
	"github.com/jetsetilly/sci0play/hardware/clocks"
	"github.com/jetsetilly/sci0play/hardware/pic"
	"github.com/jetsetilly/sci0play/hardware/pit"
	"github.com/jetsetilly/sci0play/logger"
)

// PIT control word: counter 0, lo/hi access, mode 2 (rate generator), binary
const controlWord = 0x34

// Virtual replaces the system timer interrupt of the machine. The PIT is
// reprogrammed to the target rate and the previous handler is called from
// the replacement at the rate it expects, so the BIOS clock keeps time.
type Virtual struct {
	m *hardware.Machine

	// crit guards the installation state. the handler does not touch it
	crit      sync.Mutex
	installed bool
	old       hardware.Handler
	divisor   uint32

	// written only by the interrupt handler
	accumulator atomic.Uint32
	chained     atomic.Uint64

	fired atomic.Bool
}

// NewVirtual returns a tick source for the machine.
func NewVirtual(m *hardware.Machine) *Virtual {
	return &Virtual{m: m}
}

func (v *Virtual) Label() string {
	return "virtual timer"
}

func (v *Virtual) Status() string {
	v.crit.Lock()
	defer v.crit.Unlock()
	return fmt.Sprintf("%s: installed=%v divisor=%d accumulator=%d chained=%d", v.Label(),
		v.installed, v.divisor, v.accumulator.Load(), v.chained.Load())
}

// program the PIT counter 0 reload value. must be called with interrupts
// disabled
func (v *Virtual) program(reload uint16) error {
	if err := v.m.Out(pit.PortControl, controlWord); err != nil {
		return err
	}
	if err := v.m.Out(pit.PortCounter0, uint8(reload)); err != nil {
		return err
	}
	return v.m.Out(pit.PortCounter0, uint8(reload>>8))
}

func (v *Virtual) handler() {
	v.fired.Store(true)

	acc := v.accumulator.Load() + v.divisor
	if acc >= clocks.MaxDivisor {
		v.accumulator.Store(acc - clocks.MaxDivisor)
		v.chained.Add(1)

		// the previous handler acknowledges the interrupt
		v.old()
		return
	}
	v.accumulator.Store(acc)

	_ = v.m.Out(pic.PortCommand, pic.EOI)
}

// Install implements the Source interface.
func (v *Virtual) Install(hz int) error {
	if hz < clocks.MinRate || hz > clocks.PITHz {
		return fmt.Errorf("%w: %dHz", InvalidRate, hz)
	}

	v.crit.Lock()
	defer v.crit.Unlock()

	if v.installed {
		return AlreadyInstalled
	}

	v.m.CLI()
	defer v.m.STI()

	v.old = v.m.GetVector(hardware.TimerVector)
	if v.old == nil {
		return fmt.Errorf("timer: no handler on vector %#02x", hardware.TimerVector)
	}

	v.divisor = clocks.Divisor(hz)
	v.accumulator.Store(0)
	v.fired.Store(false)

	if err := v.program(clocks.Reload(v.divisor)); err != nil {
		return fmt.Errorf("timer: %w", err)
	}
	v.m.SetVector(hardware.TimerVector, v.handler)
	v.installed = true

	logger.Logf(logger.Allow, "timer", "installed at %dHz (divisor %d)", hz, v.divisor)

	return nil
}

// Uninstall implements the Source interface.
func (v *Virtual) Uninstall() error {
	v.crit.Lock()
	defer v.crit.Unlock()

	if !v.installed {
		return NotInstalled
	}

	v.m.CLI()
	defer v.m.STI()

	v.m.SetVector(hardware.TimerVector, v.old)
	v.old = nil
	v.installed = false

	if err := v.program(0); err != nil {
		return fmt.Errorf("timer: %w", err)
	}

	logger.Log(logger.Allow, "timer", "uninstalled")

	return nil
}

// Wait implements the Source interface.
func (v *Virtual) Wait(ctx context.Context) error {
	return v.m.Halt(ctx)
}

// Fired implements the Source interface.
func (v *Virtual) Fired() bool {
	return v.fired.Swap(false)
}

// Accumulator returns the current value of the tick accumulator.
func (v *Virtual) Accumulator() uint32 {
	return v.accumulator.Load()
}

// Chained returns the number of times the previous handler has been called.
func (v *Virtual) Chained() uint64 {
	return v.chained.Load()
}
