// Package player plays an SCI0 sound resource through a sound driver, paced
// by a fixed rate tick.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jetsetilly/sci0play/audio"
	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/driver"
	"github.com/jetsetilly/sci0play/driver/emulated"
	"github.com/jetsetilly/sci0play/driver/realmode"
	"github.com/jetsetilly/sci0play/driver/script"
	"github.com/jetsetilly/sci0play/hardware"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/logger"
	"github.com/jetsetilly/sci0play/resource"
	"github.com/jetsetilly/sci0play/timer"
)

// Stats counts the events of a session.
type Stats struct {
	// ticks seen by the session and the number of service calls made in
	// response. a tick that arrives before the previous tick is seen is
	// not counted
	Observed int
	Serviced int

	// loop boundaries and cue signals reported by the driver
	Loops int
	Cues  int
}

// Session plays a single sound from start to finish.
type Session struct {
	cfg    Config
	fsys   fs.FS
	out    io.Writer
	styles styles

	mach   *hardware.Machine
	loader *resource.Loader
	mixer  *audio.Mixer

	blk    control.Block
	heap   memory.Address
	bridge *driver.Bridge

	dev   driver.Device
	ticks timer.Source

	crit  sync.Mutex
	state State
	stats Stats
}

// NewSession prepares a session. Resources are read from fsys and messages
// are written to out.
func NewSession(cfg Config, fsys fs.FS, out io.Writer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:    cfg,
		fsys:   fsys,
		out:    out,
		styles: newStyles(false),
		mach:   hardware.Create(),
		mixer:  audio.NewMixer(),
		state:  Loading,
	}
	s.loader = resource.NewLoader(fsys, s.mach.Mem)

	return s, nil
}

// SetStyled enables styled output. It should only be used when the output is
// a terminal.
func (s *Session) SetStyled(styled bool) {
	s.styles = newStyles(styled)
}

// SetDevice replaces the device chosen by the configuration. It must be
// called before Run().
func (s *Session) SetDevice(dev driver.Device) {
	s.dev = dev
}

// SetTicks replaces the tick source chosen by the configuration. It must be
// called before Run().
func (s *Session) SetTicks(src timer.Source) {
	s.ticks = src
}

// Machine returns the emulated machine that holds the resources.
func (s *Session) Machine() *hardware.Machine {
	return s.mach
}

// Mixer returns the synthesiser played by the built-in devices.
func (s *Session) Mixer() *audio.Mixer {
	return s.mixer
}

// State returns the current state of the session. It is safe to call from
// any goroutine.
func (s *Session) State() State {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.state
}

// Stats returns the session counts. Only valid once Run() has returned.
func (s *Session) Stats() Stats {
	return s.stats
}

// Block returns a copy of the control block. Only valid once Run() has
// returned.
func (s *Session) Block() control.Block {
	return s.blk
}

// states only move forward. a request to move backwards is ignored
func (s *Session) setState(to State) {
	s.crit.Lock()
	defer s.crit.Unlock()
	if to > s.state {
		logger.Logf(logger.Allow, "session", "%s -> %s", s.state, to)
		s.state = to
	}
}

func (s *Session) print(style lipgloss.Style, msg string) {
	logger.Log(logger.Allow, "session", msg)
	fmt.Fprintln(s.out, style.Render(msg))
}

func (s *Session) device(drv *resource.Buffer) (driver.Device, error) {
	if s.dev != nil {
		return s.dev, nil
	}

	switch s.cfg.Device {
	case DeviceRealMode:
		if drv == nil {
			return nil, fmt.Errorf("session: %s device requires a driver module", s.cfg.Device)
		}
		exec := realmode.DeviceExecutor{Device: emulated.New(s.mach.Mem, s.mixer)}
		return realmode.NewAdapter(s.mach.Mem, drv.Addr, s.heap, exec)

	case DeviceEmulated:
		return emulated.New(s.mach.Mem, s.mixer), nil

	case DeviceScript:
		f, err := s.fsys.Open(s.cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", resource.Unavailable, s.cfg.Script, err)
		}
		defer f.Close()
		return script.New(s.mach.Mem, s.mixer, s.cfg.Script, f)
	}

	return nil, fmt.Errorf("session: unknown device (%s)", s.cfg.Device)
}

func (s *Session) tickSource() timer.Source {
	if s.ticks != nil {
		return s.ticks
	}
	if s.cfg.Timer == TimerHosted {
		return timer.NewHosted()
	}
	return timer.NewVirtual(s.mach)
}

// record the hardware state at the end of playback
func (s *Session) logStatus() {
	logger.Log(logger.Allow, "session", s.mach.Status())
	if v, ok := s.ticks.(*timer.Virtual); ok {
		logger.Log(logger.Allow, "session", v.Status())
	}
	logger.Log(logger.Allow, "session", s.mixer.Status())
}

// wait for the next interrupt and service the driver if it was a tick
func (s *Session) tick(ctx context.Context) error {
	if err := s.ticks.Wait(ctx); err != nil {
		return fmt.Errorf("playback interrupted: %w", err)
	}
	if s.ticks.Fired() {
		s.stats.Observed++
		if err := s.bridge.Service(); err != nil {
			return err
		}
		s.stats.Serviced++
	}
	return nil
}

// Run the session to completion. The driver is shut down on every path
// after it has been initialised and the tick source is always uninstalled
// before the driver is shut down. If the context is cancelled the session
// ends early and an error is returned.
func (s *Session) Run(ctx context.Context) (err error) {
	defer s.setState(Stopped)

	var drv *resource.Buffer
	if s.cfg.Driver != "" {
		drv, err = s.loader.Load(s.cfg.Driver)
		if err != nil {
			return err
		}
		info, err := resource.ParseDriverInfo(drv.Data)
		if err != nil {
			return err
		}
		s.print(s.styles.driver, fmt.Sprintf("%s = %d", drv.Name, len(drv.Data)))
		s.print(s.styles.driver, info.String())
	}

	s.heap, err = s.mach.Mem.Alloc(control.Size)
	if err != nil {
		return fmt.Errorf("control block: %w", err)
	}
	s.blk.Reset(control.MaxVolume)

	dev, err := s.device(drv)
	if err != nil {
		return err
	}
	if c, ok := dev.(interface{ Close() }); ok {
		defer c.Close()
	}
	s.bridge = driver.NewBridge(dev, &s.blk, s.heap)

	patchNum, _, err := s.bridge.Info()
	if err != nil {
		return err
	}

	snd, err := s.loader.Load(s.cfg.Sound)
	if err != nil {
		return err
	}
	if err := snd.Validate(); err != nil {
		return err
	}

	var patch *resource.Buffer
	if patchNum != resource.NoPatch {
		name := resource.PatchName(patchNum)
		s.print(s.styles.patch, fmt.Sprintf("Patch file: %s", name))
		patch, err = s.loader.Load(name)
		if err != nil {
			return err
		}
		if err := patch.Validate(); err != nil {
			return err
		}
	}

	if err := s.bridge.Init(patch); err != nil {
		return err
	}
	defer func() {
		if serr := s.bridge.Shutdown(); serr != nil {
			err = errors.Join(err, serr)
		}
	}()

	if _, err := s.bridge.Load(snd); err != nil {
		return err
	}
	s.setState(Ready)

	if err := s.bridge.SetVolume(s.cfg.Volume); err != nil {
		return err
	}

	s.ticks = s.tickSource()
	if err := s.ticks.Install(s.cfg.Rate); err != nil {
		return err
	}
	defer func() {
		if uerr := s.ticks.Uninstall(); uerr != nil {
			err = errors.Join(err, uerr)
		}
	}()

	defer s.logStatus()

	// the machine runs in real time for as long as the virtual timer is
	// installed
	if _, ok := s.ticks.(*timer.Virtual); ok {
		machCtx, stop := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.mach.Run(machCtx)
		}()
		defer func() {
			stop()
			wg.Wait()
		}()
	}

	s.setState(Playing)
	for s.stats.Loops < s.cfg.Loops {
		if err := s.tick(ctx); err != nil {
			return err
		}

		switch {
		case s.blk.Looped():
			s.stats.Loops++
			s.blk.Signal = 0
			s.print(s.styles.event, "Loop")
		case s.blk.Signal != 0:
			s.stats.Cues++
			logger.Logf(logger.Allow, "session", "cue %d", s.blk.Signal)
			s.blk.Signal = 0
		}
	}

	s.print(s.styles.event, "Fade")
	if err := s.bridge.FadeOut(); err != nil {
		return err
	}
	s.setState(Fading)

	for !s.blk.FadeFinished() {
		if err := s.tick(ctx); err != nil {
			return err
		}
	}

	return nil
}
