// Package script is a sound device written in Lua.
//
// Each driver function is a global Lua function named after the function,
// with spaces replaced by underscores: get_device_info, init_device,
// shutdown_device, load_sound, service_tick, set_volume, fade_out,
// stop_sound, pause_sound and seek_sound. The function is called with the
// control block as a table and may return values for AX and CX. Changes made
// to the table are copied back to the control block. A function that is not
// defined does nothing and returns zero in both registers.
//
// The control block table has the fields scratch (an array of seven
// numbers), resource_ptr, faded, position, state, signal, volume,
// resource_off and resource_seg.
//
// The following global functions are available to the script:
//
//	peek(seg, off)             byte of memory
//	peekw(seg, off)            little-endian word of memory
//	note_on(ch, note, vel)     start a note
//	note_off(ch, note)         stop a note
//	volume(level)              master volume 0 to 15
//	silence()                  stop all notes
//	log(message)               write to the log
package script

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/driver"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/logger"
	lua "github.com/yuin/gopher-lua"
)

// Synth is the sound generator played by the script.
type Synth interface {
	NoteOn(channel uint8, note uint8, velocity uint8)
	NoteOff(channel uint8, note uint8)
	Volume(level uint8)
	Silence()
}

// Device runs a Lua script as a sound device.
type Device struct {
	crit  sync.Mutex
	name  string
	vm    *lua.LState
	mem   *memory.Memory
	synth Synth
}

// the name of the Lua function for a driver function
func funcName(fn driver.Function) string {
	return strings.ReplaceAll(fn.String(), " ", "_")
}

// New loads and runs the script. The synth can be nil.
func New(mem *memory.Memory, synth Synth, name string, src io.Reader) (*Device, error) {
	dev := &Device{
		name:  name,
		mem:   mem,
		synth: synth,
		vm:    lua.NewState(lua.Options{SkipOpenLibs: true}),
	}

	// the script has no access to the io or os libraries
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := dev.vm.CallByParam(lua.P{
			Fn:      dev.vm.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			dev.vm.Close()
			return nil, fmt.Errorf("script: %w", err)
		}
	}

	dev.register()

	fn, err := dev.vm.Load(src, name)
	if err != nil {
		dev.vm.Close()
		return nil, fmt.Errorf("script: %w", err)
	}
	dev.vm.Push(fn)
	if err := dev.vm.PCall(0, lua.MultRet, nil); err != nil {
		dev.vm.Close()
		return nil, fmt.Errorf("script: %w", err)
	}

	return dev, nil
}

func (dev *Device) register() {
	L := dev.vm

	address := func(L *lua.LState) memory.Address {
		return memory.Address{
			Seg: uint16(L.CheckInt(1)),
			Off: uint16(L.CheckInt(2)),
		}
	}

	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(dev.mem.Read(address(L))))
		return 1
	}))
	L.SetGlobal("peekw", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(dev.mem.Read16(address(L))))
		return 1
	}))
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		logger.Log(logger.Allow, dev.name, L.CheckString(1))
		return 0
	}))

	L.SetGlobal("note_on", L.NewFunction(func(L *lua.LState) int {
		if dev.synth != nil {
			dev.synth.NoteOn(uint8(L.CheckInt(1)), uint8(L.CheckInt(2)), uint8(L.CheckInt(3)))
		}
		return 0
	}))
	L.SetGlobal("note_off", L.NewFunction(func(L *lua.LState) int {
		if dev.synth != nil {
			dev.synth.NoteOff(uint8(L.CheckInt(1)), uint8(L.CheckInt(2)))
		}
		return 0
	}))
	L.SetGlobal("volume", L.NewFunction(func(L *lua.LState) int {
		if dev.synth != nil {
			dev.synth.Volume(uint8(min(max(L.CheckInt(1), 0), control.MaxVolume)))
		}
		return 0
	}))
	L.SetGlobal("silence", L.NewFunction(func(L *lua.LState) int {
		if dev.synth != nil {
			dev.synth.Silence()
		}
		return 0
	}))
}

func (dev *Device) Label() string {
	return dev.name
}

// Close releases the Lua state. The device cannot be used afterwards.
func (dev *Device) Close() {
	dev.crit.Lock()
	defer dev.crit.Unlock()
	dev.vm.Close()
}

func (dev *Device) toTable(blk *control.Block) *lua.LTable {
	L := dev.vm
	t := L.NewTable()

	scratch := L.NewTable()
	for _, v := range blk.Scratch {
		scratch.Append(lua.LNumber(v))
	}
	L.SetField(t, "scratch", scratch)

	L.SetField(t, "resource_ptr", lua.LNumber(blk.ResourcePtr))
	L.SetField(t, "faded", lua.LNumber(blk.Faded))
	L.SetField(t, "position", lua.LNumber(blk.Position))
	L.SetField(t, "state", lua.LNumber(blk.State))
	L.SetField(t, "signal", lua.LNumber(blk.Signal))
	L.SetField(t, "volume", lua.LNumber(blk.Volume))
	L.SetField(t, "resource_off", lua.LNumber(blk.ResourceOff))
	L.SetField(t, "resource_seg", lua.LNumber(blk.ResourceSeg))

	return t
}

// lua numbers are converted to register width by truncation
func word(v lua.LValue) uint16 {
	return uint16(int64(lua.LVAsNumber(v)))
}

func (dev *Device) fromTable(t *lua.LTable, blk *control.Block) {
	L := dev.vm

	if scratch, ok := L.GetField(t, "scratch").(*lua.LTable); ok {
		for i := range blk.Scratch {
			blk.Scratch[i] = word(scratch.RawGetInt(i + 1))
		}
	}

	blk.ResourcePtr = word(L.GetField(t, "resource_ptr"))
	blk.Faded = int16(word(L.GetField(t, "faded")))
	blk.Position = word(L.GetField(t, "position"))
	blk.State = int16(word(L.GetField(t, "state")))
	blk.Signal = int16(word(L.GetField(t, "signal")))
	blk.Volume = word(L.GetField(t, "volume"))
	blk.ResourceOff = word(L.GetField(t, "resource_off"))
	blk.ResourceSeg = word(L.GetField(t, "resource_seg"))
}

// Call implements the driver.Device interface.
func (dev *Device) Call(fn driver.Function, blk *control.Block) (driver.Result, error) {
	dev.crit.Lock()
	defer dev.crit.Unlock()

	var r driver.Result

	if !fn.Valid() {
		return r, fmt.Errorf("%s: unsupported function (%d)", dev.name, fn)
	}

	f, ok := dev.vm.GetGlobal(funcName(fn)).(*lua.LFunction)
	if !ok {
		return r, nil
	}

	t := dev.toTable(blk)
	if err := dev.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    2,
		Protect: true,
	}, t); err != nil {
		return r, fmt.Errorf("%s: %s: %w", dev.name, fn, err)
	}

	ax := dev.vm.Get(-2)
	cx := dev.vm.Get(-1)
	dev.vm.Pop(2)

	if ax != lua.LNil {
		r.AX = word(ax)
	}
	if cx != lua.LNil {
		r.CX = word(cx)
	}

	dev.fromTable(t, blk)

	return r, nil
}
