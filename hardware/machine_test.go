package hardware_test

import (
	"context"
	"testing"
	"time"

	"github.com/jetsetilly/sci0play/hardware"
	"github.com/jetsetilly/sci0play/hardware/clocks"
	"github.com/jetsetilly/sci0play/hardware/pic"
	"github.com/jetsetilly/sci0play/test"
)

func TestBIOSRate(t *testing.T) {
	m := hardware.Create()

	// one second of input clock at the native rate
	m.Step(clocks.PITHz)
	test.ExpectEquality(t, m.BIOS.Ticks(), uint32(18))
	test.ExpectEquality(t, m.Interrupts(), uint64(18))
	test.ExpectEquality(t, m.PIC.InService(hardware.TimerIRQ), false)
}

func TestMissingEOIBlocksLine(t *testing.T) {
	m := hardware.Create()

	var calls int
	m.CLI()
	m.SetVector(hardware.TimerVector, func() {
		calls++
	})
	m.STI()

	m.Step(clocks.MaxDivisor * 3)
	test.ExpectEquality(t, calls, 1)
	test.ExpectEquality(t, m.PIC.Dropped(hardware.TimerIRQ), 2)

	test.ExpectSuccess(t, m.Out(pic.PortCommand, pic.EOI))
	m.Step(clocks.MaxDivisor)
	test.ExpectEquality(t, calls, 2)
}

func TestPorts(t *testing.T) {
	m := hardware.Create()

	test.ExpectSuccess(t, m.Out(0x43, 0x34))
	test.ExpectSuccess(t, m.Out(0x40, 0xae))
	test.ExpectSuccess(t, m.Out(0x40, 0x4d))
	test.ExpectEquality(t, m.PIT.Reload(), uint16(0x4dae))

	test.ExpectSuccess(t, m.Out(0x21, 0xfe))
	v, err := m.In(0x21)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xfe))

	test.ExpectFailure(t, m.Out(0x60, 0x00))
	_, err = m.In(0x61)
	test.ExpectFailure(t, err)
}

func TestHalt(t *testing.T) {
	m := hardware.Create()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	test.ExpectFailure(t, m.Halt(ctx))

	m.Step(clocks.MaxDivisor)
	test.ExpectSuccess(t, m.Halt(context.Background()))
}

func TestInterruptsDisabled(t *testing.T) {
	m := hardware.Create()

	done := make(chan bool)
	m.CLI()
	go func() {
		m.Step(clocks.MaxDivisor)
		done <- true
	}()

	select {
	case <-done:
		t.Fatalf("interrupt dispatched while interrupts were disabled")
	case <-time.After(10 * time.Millisecond):
	}

	test.ExpectEquality(t, m.BIOS.Ticks(), uint32(0))
	m.STI()
	<-done
	test.ExpectEquality(t, m.BIOS.Ticks(), uint32(1))
}
