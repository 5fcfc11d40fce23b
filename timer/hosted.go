package timer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/sci0play/logger"
)

// Hosted is a tick source driven by the host's clock.
type Hosted struct {
	crit   sync.Mutex
	cancel context.CancelFunc
	done   chan bool

	fired atomic.Bool
	ticks atomic.Uint64

	// wakes Wait(). holds at most one pending wake
	nudge chan bool
}

// NewHosted returns an uninstalled tick source.
func NewHosted() *Hosted {
	return &Hosted{
		nudge: make(chan bool, 1),
	}
}

func (h *Hosted) Label() string {
	return "hosted timer"
}

func (h *Hosted) wake() {
	select {
	case h.nudge <- true:
	default:
	}
}

// Install implements the Source interface.
func (h *Hosted) Install(hz int) error {
	if hz <= 0 || time.Second/time.Duration(hz) == 0 {
		return fmt.Errorf("%w: %dHz", InvalidRate, hz)
	}

	h.crit.Lock()
	defer h.crit.Unlock()

	if h.cancel != nil {
		return AlreadyInstalled
	}

	h.fired.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan bool)

	tck := time.NewTicker(time.Second / time.Duration(hz))
	go func() {
		defer close(h.done)
		defer tck.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tck.C:
				h.fired.Store(true)
				h.ticks.Add(1)
				h.wake()
			}
		}
	}()

	logger.Logf(logger.Allow, "timer", "hosted ticks at %dHz", hz)

	return nil
}

// Uninstall implements the Source interface. No tick is delivered once it
// has returned.
func (h *Hosted) Uninstall() error {
	h.crit.Lock()
	defer h.crit.Unlock()

	if h.cancel == nil {
		return NotInstalled
	}

	h.cancel()
	<-h.done
	h.cancel = nil

	logger.Log(logger.Allow, "timer", "hosted ticks stopped")

	return nil
}

// Wait implements the Source interface.
func (h *Hosted) Wait(ctx context.Context) error {
	select {
	case <-h.nudge:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fired implements the Source interface.
func (h *Hosted) Fired() bool {
	return h.fired.Swap(false)
}

// Ticks returns the number of ticks since creation.
func (h *Hosted) Ticks() uint64 {
	return h.ticks.Load()
}
