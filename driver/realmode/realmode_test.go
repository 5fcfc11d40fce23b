package realmode_test

import (
	"testing"

	"github.com/jetsetilly/sci0play/control"
	"github.com/jetsetilly/sci0play/driver"
	"github.com/jetsetilly/sci0play/driver/drivertest"
	"github.com/jetsetilly/sci0play/driver/realmode"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/test"
)

// rawDriver inspects the control block directly in memory, as driver code
// would
type rawDriver struct {
	entry memory.Address
	regs  realmode.Registers
	image []uint8
}

func (d *rawDriver) FarCall(mem *memory.Memory, entry memory.Address, regs *realmode.Registers) error {
	d.entry = entry
	d.regs = *regs
	heap := memory.Address{Seg: regs.DS, Off: regs.SI}
	d.image = mem.ReadBlock(heap, control.Size)

	// report the loop signal and clobber the registers the host restores
	mem.Write16(heap.Add(control.OffSignal), 0xffff)
	regs.AX = 0x0001
	regs.CX = 0x0010
	regs.SI = 0xdead
	regs.BP = 0xbeef
	return nil
}

func TestCallingConvention(t *testing.T) {
	mem := memory.Create()
	entry, err := mem.Alloc(0x100)
	test.DemandEquality(t, err, nil)
	heap, err := mem.Alloc(control.Size)
	test.DemandEquality(t, err, nil)

	raw := &rawDriver{}
	a, err := realmode.NewAdapter(mem, entry, heap, raw)
	test.DemandEquality(t, err, nil)

	var blk control.Block
	blk.Reset(12)
	blk.SetResource(0x2000, 0x0004, heap.Off)

	r, err := a.Call(driver.LoadSound, &blk)
	test.DemandEquality(t, err, nil)

	test.ExpectEquality(t, raw.entry, entry)
	test.ExpectEquality(t, raw.regs.BP, uint16(driver.LoadSound))
	test.ExpectEquality(t, raw.regs.DS, heap.Seg)
	test.ExpectEquality(t, raw.regs.SI, heap.Off)

	want, err := blk.MarshalBinary()
	test.DemandEquality(t, err, nil)
	want[control.OffSignal] = 0x00
	want[control.OffSignal+1] = 0x00
	test.ExpectSlice(t, raw.image, want)

	test.ExpectEquality(t, r, driver.Result{AX: 0x0001, CX: 0x0010})
	test.ExpectEquality(t, blk.Signal, control.SignalLoop)
	test.ExpectEquality(t, blk.Volume, uint16(12))
}

func TestUnaligned(t *testing.T) {
	mem := memory.Create()
	_, err := realmode.NewAdapter(mem, memory.Address{Seg: 0x1000, Off: 0x0002}, memory.Address{}, &rawDriver{})
	test.ExpectFailure(t, err)
}

func TestDeviceExecutor(t *testing.T) {
	mem := memory.Create()
	entry, _ := mem.Alloc(0x100)
	heap, _ := mem.Alloc(control.Size)

	dev := drivertest.New()
	dev.LoopEvery = 1
	a, err := realmode.NewAdapter(mem, entry, heap, realmode.DeviceExecutor{Device: dev})
	test.DemandEquality(t, err, nil)

	var blk control.Block
	blk.Reset(15)
	blk.SetResource(0x3000, 0x0022, heap.Off)

	r, err := a.Call(driver.GetDeviceInfo, &blk)
	test.DemandEquality(t, err, nil)
	test.ExpectEquality(t, r.Primary(), int16(-1))
	test.ExpectEquality(t, r.CX, uint16(8))

	_, err = a.Call(driver.ServiceTick, &blk)
	test.DemandEquality(t, err, nil)
	test.ExpectEquality(t, blk.Looped(), true)

	// the device followed the resource pointer
	blocks := dev.Blocks()
	test.ExpectEquality(t, blocks[1].ResourceSeg, uint16(0x3000))
	test.ExpectEquality(t, blocks[1].ResourceOff, uint16(0x0022))

	// invalid function numbers never reach the device
	_, err = a.Call(driver.Function(3), &blk)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, len(dev.Calls()), 2)
}
