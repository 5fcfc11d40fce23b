// Package resource loads the driver module and the sound and patch resources
// into the memory of the emulated machine.
//
// Every buffer is read whole and is never modified or freed after loading.
// Sound and patch resources begin with a two byte preamble: byte 0 identifies
// the resource type and byte 1 is the length of an extra header. The body of
// the resource, which is what a driver is pointed at, follows the extra
// header.
package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/logger"
)

// Sentinel errors returned by Load() and Validate(). Allocation failures are reported with
// memory.AllocationFailure.
var (
	Unavailable = errors.New("resource unavailable")
	ShortRead   = errors.New("short read")

	// the resource is shorter than its own header says it is
	Malformed = fmt.Errorf("%w: malformed resource", ShortRead)
)

// the size of the fixed preamble before the extra header
const preambleLen = 2

// NoPatch is the patch number reported by a driver that does not need a
// patch resource.
const NoPatch = -1

// PatchName returns the filename of the patch resource with the number.
func PatchName(number int) string {
	return fmt.Sprintf("patch.%03d", number)
}

// Buffer is a file loaded into memory.
type Buffer struct {
	Name string
	Data []uint8

	// where the buffer has been placed in memory
	Addr memory.Address
}

// HeaderLen returns the length of the extra header.
func (b *Buffer) HeaderLen() int {
	if len(b.Data) < preambleLen {
		return 0
	}
	return int(b.Data[1])
}

// Body returns the address of the resource body. The address is calculated
// from the buffer data each time and is never cached.
func (b *Buffer) Body() memory.Address {
	return b.Addr.Add(uint16(b.HeaderLen() + preambleLen))
}

// Validate checks that the buffer is large enough to contain its own
// header. Sound and patch resources must be validated before a driver is
// pointed at them.
func (b *Buffer) Validate() error {
	if len(b.Data) < preambleLen {
		return fmt.Errorf("%w: %s is too short (%d bytes)", Malformed, b.Name, len(b.Data))
	}
	if b.HeaderLen()+preambleLen > len(b.Data) {
		return fmt.Errorf("%w: %s header length %d exceeds resource size", Malformed, b.Name, b.HeaderLen())
	}
	return nil
}

// Loader reads files from a filesystem and places them in memory.
type Loader struct {
	fsys fs.FS
	mem  *memory.Memory
}

// NewLoader returns a Loader for files in fsys.
func NewLoader(fsys fs.FS, mem *memory.Memory) *Loader {
	return &Loader{
		fsys: fsys,
		mem:  mem,
	}
}

// Load reads the named file whole and copies it into newly allocated memory.
func (l *Loader) Load(name string) (*Buffer, error) {
	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", Unavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", Unavailable, name)
	}
	size := int(info.Size())

	addr, err := l.mem.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", Unavailable, err)
	}
	defer f.Close()

	data := make([]uint8, size)
	n, err := io.ReadFull(f, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read %d of %d bytes", ShortRead, name, n, size)
	}

	l.mem.WriteBlock(addr, data)
	logger.Logf(logger.Allow, "resource", "%s: %d bytes at %s", name, size, addr)

	return &Buffer{
		Name: name,
		Data: data,
		Addr: addr,
	}, nil
}
