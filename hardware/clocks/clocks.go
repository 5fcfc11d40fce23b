package clocks

const Mhz = 1000000

// the input clock of the 8253 PIT. this is the NTSC colour burst frequency
// divided by three
const PIT = 1.193182 * Mhz

// PITHz is the PIT input clock as an integer. divisors are calculated from
// this value
const PITHz = 1193182

// the largest divisor a PIT counter can be loaded with. a reload value of zero
// is interpreted as this value
const MaxDivisor = 0x10000

// BIOS is the rate of the system timer as programmed by the BIOS, ie. with the
// largest possible divisor. approximately 18.2Hz
const BIOS = PIT / MaxDivisor

// MinRate is the slowest whole rate a counter can be programmed to. any
// slower rate needs a divisor larger than MaxDivisor
const MinRate = PITHz/MaxDivisor + 1

// Divisor returns the PIT divisor for the requested rate. the result is
// clamped to the range of a 16bit counter
func Divisor(hz int) uint32 {
	if hz <= 0 {
		return MaxDivisor
	}
	d := uint32(PITHz / hz)
	if d == 0 {
		d = 1
	}
	if d > MaxDivisor {
		d = MaxDivisor
	}
	return d
}

// Reload returns the value that should be written to the PIT counter for
// the divisor. the full divisor of 0x10000 is written as zero
func Reload(divisor uint32) uint16 {
	return uint16(divisor)
}

// Rate returns the output frequency of a PIT counter loaded with reload. a
// reload of zero means 0x10000
func Rate(reload uint16) float64 {
	d := float64(reload)
	if reload == 0 {
		d = MaxDivisor
	}
	return PIT / d
}
