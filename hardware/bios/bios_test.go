package bios_test

import (
	"testing"

	"github.com/jetsetilly/sci0play/hardware/bios"
	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/test"
)

type ports struct {
	writes [][2]uint16
}

func (p *ports) Out(port uint16, data uint8) error {
	p.writes = append(p.writes, [2]uint16{port, uint16(data)})
	return nil
}

func TestTimerHandler(t *testing.T) {
	mem := memory.Create()
	b := bios.Create(mem)
	p := &ports{}

	h := b.TimerHandler(p)
	h()
	h()

	test.ExpectEquality(t, b.Ticks(), uint32(2))
	test.ExpectEquality(t, len(p.writes), 2)
	test.ExpectEquality(t, p.writes[0], [2]uint16{0x20, 0x20})
}

func TestMidnight(t *testing.T) {
	mem := memory.Create()
	b := bios.Create(mem)
	p := &ports{}

	mem.Write32(bios.TickCount, 0x1800af)
	b.TimerHandler(p)()

	test.ExpectEquality(t, b.Ticks(), uint32(0))
	test.ExpectEquality(t, mem.Read(bios.Midnight), uint8(1))
}
