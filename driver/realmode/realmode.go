// Package realmode calls a sound driver using the driver's own calling
// convention.
//
// The driver module is loaded at the start of a segment and is entered with
// a far call to offset zero of that segment. On entry DS:SI points to the
// control block and BP holds the function number. On return the results are
// in AX and CX. The driver is free to modify the control block in memory;
// those changes are copied back to the host's Block after every call.
//
// The code at the entry point is run by an Executor. DeviceExecutor is an
// Executor that stands in for driver code with any driver.Device, decoding
// the control block from memory exactly as a driver would.
package realmode

import (
	"fmt"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/driver"
	"github.com/jetsetilly/sci0play/hardware/memory"
)

// Registers are the CPU registers visible to the driver.
type Registers struct {
	AX, BX, CX, DX uint16
	SI, DI, BP     uint16
	DS, ES         uint16
}

func (r Registers) String() string {
	return fmt.Sprintf("AX=%04x BX=%04x CX=%04x DX=%04x SI=%04x DI=%04x BP=%04x DS=%04x ES=%04x",
		r.AX, r.BX, r.CX, r.DX, r.SI, r.DI, r.BP, r.DS, r.ES)
}

// Executor runs the code at entry until it makes the matching far return.
type Executor interface {
	FarCall(mem *memory.Memory, entry memory.Address, regs *Registers) error
}

// Adapter is a driver.Device that marshals every call through emulated
// memory and registers.
type Adapter struct {
	mem   *memory.Memory
	entry memory.Address
	heap  memory.Address
	exec  Executor
}

// NewAdapter returns an adapter for the driver module loaded at entry, with
// the control block at heap. The driver module must be segment aligned.
func NewAdapter(mem *memory.Memory, entry memory.Address, heap memory.Address, exec Executor) (*Adapter, error) {
	if entry.Off != 0 {
		return nil, fmt.Errorf("realmode: driver at %s is not segment aligned", entry)
	}
	return &Adapter{
		mem:   mem,
		entry: entry,
		heap:  heap,
		exec:  exec,
	}, nil
}

func (a *Adapter) Label() string {
	return "realmode"
}

// Call implements the driver.Device interface.
func (a *Adapter) Call(fn driver.Function, blk *control.Block) (driver.Result, error) {
	img, err := blk.MarshalBinary()
	if err != nil {
		return driver.Result{}, err
	}
	a.mem.WriteBlock(a.heap, img)

	regs := Registers{
		SI: a.heap.Off,
		DS: a.heap.Seg,
		BP: uint16(fn),
	}

	if err := a.exec.FarCall(a.mem, a.entry, &regs); err != nil {
		return driver.Result{}, fmt.Errorf("realmode: %w", err)
	}

	// the caller's DS, SI and BP are restored by the host after the call so
	// nothing the driver did to them matters. the control block is read from
	// the address the host put it at
	if err := blk.UnmarshalBinary(a.mem.ReadBlock(a.heap, control.Size)); err != nil {
		return driver.Result{}, err
	}

	return driver.Result{AX: regs.AX, CX: regs.CX}, nil
}

// DeviceExecutor runs a driver.Device in place of driver code.
type DeviceExecutor struct {
	Device driver.Device
}

// FarCall implements the Executor interface.
func (e DeviceExecutor) FarCall(mem *memory.Memory, entry memory.Address, regs *Registers) error {
	fn := driver.Function(regs.BP)
	if !fn.Valid() {
		return fmt.Errorf("%s: invalid function number in BP (%d)", e.Device.Label(), regs.BP)
	}

	heap := memory.Address{Seg: regs.DS, Off: regs.SI}

	var blk control.Block
	if err := blk.UnmarshalBinary(mem.ReadBlock(heap, control.Size)); err != nil {
		return err
	}

	// the resource is found by following the near pointer in the control
	// block to a far pointer in the data segment
	ptr := memory.Address{Seg: regs.DS, Off: blk.ResourcePtr}
	blk.ResourceOff = mem.Read16(ptr)
	blk.ResourceSeg = mem.Read16(ptr.Add(2))

	r, err := e.Device.Call(fn, &blk)
	if err != nil {
		return err
	}

	img, err := blk.MarshalBinary()
	if err != nil {
		return err
	}
	mem.WriteBlock(heap, img)

	regs.AX = r.AX
	regs.CX = r.CX
	return nil
}
