package clocks_test

import (
	"math"
	"testing"

	"github.com/jetsetilly/sci0play/hardware/clocks"
	"github.com/jetsetilly/sci0play/test"
)

func TestDivisor(t *testing.T) {
	test.ExpectEquality(t, clocks.Divisor(60), 19886)
	test.ExpectEquality(t, clocks.Divisor(0), clocks.MaxDivisor)
	test.ExpectEquality(t, clocks.Divisor(1), clocks.MaxDivisor)
	test.ExpectEquality(t, clocks.Divisor(clocks.PITHz*2), 1)
}

func TestReloadAndRate(t *testing.T) {
	test.ExpectEquality(t, clocks.Reload(clocks.MaxDivisor), 0)
	test.ExpectEquality(t, clocks.Reload(19886), 19886)

	// zero is the native BIOS rate
	test.ExpectEquality(t, clocks.Rate(0), clocks.BIOS)
	test.ExpectSuccess(t, math.Abs(clocks.BIOS-18.2065) < 0.001)

	// 60Hz is within rounding error of a single divisor step
	test.ExpectSuccess(t, math.Abs(clocks.Rate(clocks.Reload(clocks.Divisor(60)))-60) < 0.01)
}

func TestMinRate(t *testing.T) {
	test.ExpectEquality(t, clocks.MinRate, int(math.Ceil(clocks.BIOS)))
	test.ExpectSuccess(t, clocks.Divisor(clocks.MinRate) < clocks.MaxDivisor)
	test.ExpectEquality(t, clocks.Divisor(clocks.MinRate-1), clocks.MaxDivisor)
}
