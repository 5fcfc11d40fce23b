// Package memory is the real-mode address space of the emulated machine: one
// megabyte of byte addressable memory reached through segment:offset
// addresses.
//
// Conventional memory above the BIOS data area is handed out by a simple
// arena. Allocations are aligned to a paragraph (16 bytes) so that every
// block begins at offset zero of its own segment. Blocks are never freed;
// everything allocated lives until the machine is discarded.
package memory

import (
	"errors"
	"fmt"
	"sync"
)

// Size of the real-mode address space
const Size = 0x100000

// the arena covers conventional memory from this segment up to (but not
// including) arenaEnd
const (
	arenaStart = 0x0100
	arenaEnd   = 0xa000
)

// the largest block that can be addressed from a single segment
const maxBlock = 0x10000

// AllocationFailure is returned when the arena cannot satisfy a request.
var AllocationFailure = errors.New("allocation failure")

// Address is a segment:offset pair.
type Address struct {
	Seg uint16
	Off uint16
}

// Linear returns the 20bit physical address. Addresses wrap at one megabyte
// as they do with the A20 line disabled.
func (a Address) Linear() uint32 {
	return (uint32(a.Seg)<<4 + uint32(a.Off)) & (Size - 1)
}

// Add returns the address n bytes further into the same segment.
func (a Address) Add(n uint16) Address {
	return Address{Seg: a.Seg, Off: a.Off + n}
}

func (a Address) String() string {
	return fmt.Sprintf("%04x:%04x", a.Seg, a.Off)
}

// Memory is the real-mode address space.
type Memory struct {
	crit sync.Mutex
	data []uint8

	// next free segment in the arena
	next uint16
}

// Create returns a zeroed address space with an empty arena.
func Create() *Memory {
	return &Memory{
		data: make([]uint8, Size),
		next: arenaStart,
	}
}

func (mem *Memory) Label() string {
	return "memory"
}

func (mem *Memory) Status() string {
	mem.crit.Lock()
	defer mem.crit.Unlock()
	return fmt.Sprintf("%s: arena next=%04x free=%d bytes", mem.Label(), mem.next, mem.free())
}

func (mem *Memory) free() int {
	return int(arenaEnd-mem.next) << 4
}

// Free returns the number of bytes remaining in the arena.
func (mem *Memory) Free() int {
	mem.crit.Lock()
	defer mem.crit.Unlock()
	return mem.free()
}

// Alloc reserves a paragraph aligned block of size bytes. The block can be
// no larger than a single segment.
func (mem *Memory) Alloc(size int) (Address, error) {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	if size < 0 || size > maxBlock {
		return Address{}, fmt.Errorf("%w: block of %d bytes cannot be addressed from one segment", AllocationFailure, size)
	}

	paragraphs := max((size+15)>>4, 1)
	if paragraphs > int(arenaEnd-mem.next) {
		return Address{}, fmt.Errorf("%w: %d bytes requested, %d available", AllocationFailure, size, mem.free())
	}

	a := Address{Seg: mem.next}
	mem.next += uint16(paragraphs)
	return a, nil
}

// Read returns the byte at address.
func (mem *Memory) Read(a Address) uint8 {
	mem.crit.Lock()
	defer mem.crit.Unlock()
	return mem.data[a.Linear()]
}

// Write sets the byte at address.
func (mem *Memory) Write(a Address, v uint8) {
	mem.crit.Lock()
	defer mem.crit.Unlock()
	mem.data[a.Linear()] = v
}

// Read16 returns the little-endian word at address. The offset wraps within
// the segment.
func (mem *Memory) Read16(a Address) uint16 {
	mem.crit.Lock()
	defer mem.crit.Unlock()
	lo := mem.data[a.Linear()]
	hi := mem.data[a.Add(1).Linear()]
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 sets the little-endian word at address.
func (mem *Memory) Write16(a Address, v uint16) {
	mem.crit.Lock()
	defer mem.crit.Unlock()
	mem.data[a.Linear()] = uint8(v)
	mem.data[a.Add(1).Linear()] = uint8(v >> 8)
}

// Read32 returns the little-endian double word at address.
func (mem *Memory) Read32(a Address) uint32 {
	lo := mem.Read16(a)
	hi := mem.Read16(a.Add(2))
	return uint32(hi)<<16 | uint32(lo)
}

// Write32 sets the little-endian double word at address.
func (mem *Memory) Write32(a Address, v uint32) {
	mem.Write16(a, uint16(v))
	mem.Write16(a.Add(2), uint16(v>>16))
}

// ReadBlock copies n bytes starting at address into a new slice.
func (mem *Memory) ReadBlock(a Address, n int) []uint8 {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	b := make([]uint8, n)
	for i := range b {
		b[i] = mem.data[a.Add(uint16(i)).Linear()]
	}
	return b
}

// WriteBlock copies data into memory starting at address.
func (mem *Memory) WriteBlock(a Address, data []uint8) {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	for i, v := range data {
		mem.data[a.Add(uint16(i)).Linear()] = v
	}
}
