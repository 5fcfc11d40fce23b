package player_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/sci0play/driver"
	"github.com/jetsetilly/sci0play/driver/emulated"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/player"
	"github.com/jetsetilly/sci0play/resource"
	"github.com/jetsetilly/sci0play/test"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("SCI0PLAY_DIR", "")
	t.Setenv("SCI0PLAY_VOLUME", "")

	cfg := player.DefaultConfig()
	test.ExpectSuccess(t, cfg.Validate())
	test.ExpectEquality(t, cfg.Dir, ".")
	test.ExpectEquality(t, cfg.Volume, 15)
	test.ExpectEquality(t, cfg.Rate, 60)
	test.ExpectEquality(t, cfg.Loops, 1)

	t.Setenv("SCI0PLAY_DIR", "/games/kq4")
	t.Setenv("SCI0PLAY_VOLUME", "7")
	cfg = player.DefaultConfig()
	test.ExpectEquality(t, cfg.Dir, "/games/kq4")
	test.ExpectEquality(t, cfg.Volume, 7)

	// unparseable values are ignored
	t.Setenv("SCI0PLAY_VOLUME", "loud")
	test.ExpectEquality(t, player.DefaultConfig().Volume, 15)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(*player.Config)
	}{
		{"volume", func(c *player.Config) { c.Volume = 16 }},
		{"negative volume", func(c *player.Config) { c.Volume = -1 }},
		{"slow rate", func(c *player.Config) { c.Rate = 18 }},
		{"loops", func(c *player.Config) { c.Loops = 0 }},
		{"timer", func(c *player.Config) { c.Timer = "rtc" }},
		{"device", func(c *player.Config) { c.Device = "mt32" }},
		{"no driver", func(c *player.Config) { c.Driver = "" }},
		{"no script", func(c *player.Config) { c.Device = player.DeviceScript }},
		{"no sound", func(c *player.Config) { c.Sound = "" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := player.DefaultConfig()
			tc.edit(&cfg)
			test.ExpectFailure(t, cfg.Validate())
		})
	}

	cfg := player.DefaultConfig()
	cfg.Device = player.DeviceEmulated
	cfg.Driver = ""
	cfg.Rate = 19
	test.ExpectSuccess(t, cfg.Validate())
}

func TestOutcome(t *testing.T) {
	test.ExpectEquality(t, player.Outcome(nil), player.Success)
	test.ExpectEquality(t, player.Outcome(fmt.Errorf("x: %w", resource.Unavailable)), player.Unavailable)
	test.ExpectEquality(t, player.Outcome(fmt.Errorf("x: %w", memory.AllocationFailure)), player.AllocationFailure)
	test.ExpectEquality(t, player.Outcome(fmt.Errorf("x: %w", resource.ShortRead)), player.ShortRead)
	test.ExpectEquality(t, player.Outcome(fmt.Errorf("x: %w", driver.InitFailed)), player.InitFailed)
	test.ExpectEquality(t, player.Outcome(fmt.Errorf("x: %w", driver.LoadFailed)), player.LoadFailed)
	test.ExpectEquality(t, player.Outcome(driver.NotReady), player.NotReady)
	test.ExpectEquality(t, player.Outcome(driver.Rejection), player.Failure)
	test.ExpectEquality(t, player.Outcome(fmt.Errorf("anything")), player.Failure)
	test.ExpectEquality(t, player.Outcome(fmt.Errorf("x: %w", resource.Malformed)), player.ShortRead)
}

func TestDiagnostic(t *testing.T) {
	err := fmt.Errorf("x: %w", driver.NotReady)
	test.ExpectEquality(t, player.Diagnostic(err, false), "*** x: device not ready")
	test.ExpectSuccess(t, strings.Contains(player.Diagnostic(err, true), "*** x: device not ready"))
}

func TestLaunch(t *testing.T) {
	test.ExpectSuccess(t, player.Launch([]string{"-version"}))
	test.ExpectFailure(t, player.Launch([]string{"-volume", "99"}))
	test.ExpectFailure(t, player.Launch([]string{"a", "b", "c"}))
	test.ExpectFailure(t, player.Launch([]string{"-nosuchflag"}))

	dir := t.TempDir()
	data, err := emulated.Sound{
		Channels: [16]emulated.Channel{0: {Voices: 1, Devices: emulated.DefaultMask}},
		Events:   []emulated.Event{{Delta: 2, Status: 0x90, Data: []uint8{60, 100}}},
	}.Encode()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "sound.002"), data, 0o644))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "std.drv"), driverModule("std", "Standard PC Speaker"), 0o644))

	err = player.Launch([]string{"-dir", dir, "-rate", "1000", "-timer", "hosted", "std.drv", "sound.002"})
	test.ExpectSuccess(t, err)

	err = player.Launch([]string{"-dir", dir, "std.drv", "sound.003"})
	test.ExpectEquality(t, player.Outcome(err), player.Unavailable)
}
