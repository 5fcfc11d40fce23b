package player

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/jetsetilly/sci0play/audio"
	"github.com/jetsetilly/sci0play/logger"
	"github.com/jetsetilly/sci0play/version"
	"golang.org/x/term"
)

const programName = "sci0play"

// Launch parses the command line arguments and plays the sound. The
// positional arguments, if present, are the driver module and the sound
// resource.
func Launch(args []string) error {
	cfg := DefaultConfig()

	var showVersion bool
	var profile bool

	flgs := flag.NewFlagSet(programName, flag.ContinueOnError)
	flgs.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory containing the resources (SCI0PLAY_DIR)")
	flgs.StringVar(&cfg.Driver, "driver", cfg.Driver, "sound driver module (SCI0PLAY_DRIVER)")
	flgs.StringVar(&cfg.Sound, "sound", cfg.Sound, "sound resource (SCI0PLAY_SOUND)")
	flgs.IntVar(&cfg.Volume, "volume", cfg.Volume, "volume 0 to 15 (SCI0PLAY_VOLUME)")
	flgs.IntVar(&cfg.Rate, "rate", cfg.Rate, "tick rate in Hz")
	flgs.IntVar(&cfg.Loops, "loops", cfg.Loops, "number of loops to play before fading out")
	flgs.StringVar(&cfg.Timer, "timer", cfg.Timer, "tick source: virtual or hosted")
	flgs.StringVar(&cfg.Device, "device", cfg.Device, "sound device: realmode, emulated or script")
	flgs.StringVar(&cfg.Script, "script", cfg.Script, "Lua file for the script device")
	flgs.BoolVar(&cfg.Audio, "audio", cfg.Audio, "play through the host audio device")
	flgs.BoolVar(&cfg.Log, "log", cfg.Log, "echo log to stderr")
	flgs.BoolVar(&profile, "profile", false, "create CPU profile")
	flgs.BoolVar(&showVersion, "version", false, "print version and exit")
	err := flgs.Parse(args)
	if err != nil {
		return err
	}
	args = flgs.Args()

	if showVersion {
		fmt.Println(version.Title())
		return nil
	}

	switch len(args) {
	case 0:
	case 2:
		cfg.Sound = args[1]
		fallthrough
	case 1:
		cfg.Driver = args[0]
	default:
		return fmt.Errorf("too many arguments")
	}

	if cfg.Log {
		logger.SetEcho(os.Stderr, true)
		defer logger.SetEcho(nil, false)
	}

	s, err := NewSession(cfg, os.DirFS(cfg.Dir), os.Stdout)
	if err != nil {
		return err
	}
	s.SetStyled(term.IsTerminal(int(os.Stdout.Fd())))

	if cfg.Audio {
		out, err := audio.Open(s.Mixer())
		if err != nil {
			return err
		}
		defer func() {
			err := out.Close()
			if err != nil {
				logger.Log(logger.Allow, "audio", err)
			}
		}()
	}

	if profile {
		f, err := os.Create("cpu.profile")
		if err != nil {
			return fmt.Errorf("performance: %w", err)
		}
		defer func() {
			err := f.Close()
			if err != nil {
				logger.Log(logger.Allow, "performance", err)
			}
		}()

		err = pprof.StartCPUProfile(f)
		if err != nil {
			return fmt.Errorf("performance: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return s.Run(ctx)
}
