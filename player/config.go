package player

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/hardware/clocks"
	"github.com/jetsetilly/sci0play/timer"
)

// Timer values
const (
	TimerVirtual = "virtual"
	TimerHosted  = "hosted"
)

// Device values
const (
	DeviceRealMode = "realmode"
	DeviceEmulated = "emulated"
	DeviceScript   = "script"
)

// Config for a playback session.
type Config struct {
	// directory containing the driver, sound and patch resources
	Dir string

	// file names relative to Dir. the driver can be empty unless the device
	// is DeviceRealMode
	Driver string
	Sound  string

	// the volume requested after the sound is loaded
	Volume int

	// tick rate in Hz
	Rate int

	// the number of loops of the sound to play before fading out
	Loops int

	// one of the Timer values
	Timer string

	// one of the Device values
	Device string

	// the Lua file used by DeviceScript. relative to Dir
	Script string

	// play the sound through the host's audio device
	Audio bool

	// echo the log to stderr
	Log bool
}

// DefaultConfig returns the default configuration,
// with overrides taken from the environment.
func DefaultConfig() Config {
	return Config{
		Dir:    envStr("SCI0PLAY_DIR", "."),
		Driver: envStr("SCI0PLAY_DRIVER", "fb01.drv"),
		Sound:  envStr("SCI0PLAY_SOUND", "sound.001"),
		Volume: envInt("SCI0PLAY_VOLUME", control.MaxVolume),
		Rate:   timer.Rate,
		Loops:  1,
		Timer:  TimerVirtual,
		Device: DeviceRealMode,
	}
}

// Validate returns an error describing the first problem with the
// configuration.
func (cfg Config) Validate() error {
	if cfg.Sound == "" {
		return fmt.Errorf("config: no sound resource")
	}
	if cfg.Volume < 0 || cfg.Volume > control.MaxVolume {
		return fmt.Errorf("config: volume must be between 0 and %d (%d)", control.MaxVolume, cfg.Volume)
	}
	if cfg.Rate < clocks.MinRate || cfg.Rate > clocks.PITHz {
		return fmt.Errorf("config: rate must be between %d and %d (%d)", clocks.MinRate, clocks.PITHz, cfg.Rate)
	}
	if cfg.Loops < 1 {
		return fmt.Errorf("config: loops must be at least one (%d)", cfg.Loops)
	}

	switch cfg.Timer {
	case TimerVirtual, TimerHosted:
	default:
		return fmt.Errorf("config: unknown timer (%s)", cfg.Timer)
	}

	switch cfg.Device {
	case DeviceRealMode:
		if cfg.Driver == "" {
			return fmt.Errorf("config: %s device requires a driver module", cfg.Device)
		}
	case DeviceEmulated:
	case DeviceScript:
		if cfg.Script == "" {
			return fmt.Errorf("config: %s device requires a script", cfg.Device)
		}
	default:
		return fmt.Errorf("config: unknown device (%s)", cfg.Device)
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
