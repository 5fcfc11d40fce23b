package resource_test

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jetsetilly/sci0play/hardware/memory"
	"github.com/jetsetilly/sci0play/resource"
	"github.com/jetsetilly/sci0play/test"
)

func TestLoad(t *testing.T) {
	mem := memory.Create()
	fsys := fstest.MapFS{
		"sound.001": &fstest.MapFile{Data: []byte{0x84, 0x03, 0xaa, 0xbb, 0xcc, 0x00, 0x01}},
	}

	b, err := resource.NewLoader(fsys, mem).Load("sound.001")
	test.DemandEquality(t, err, nil)
	test.ExpectEquality(t, b.Name, "sound.001")
	test.ExpectEquality(t, len(b.Data), 7)
	test.ExpectSuccess(t, b.Validate())

	// the data has been copied into memory
	test.ExpectSlice(t, mem.ReadBlock(b.Addr, 7), b.Data)

	// body follows the preamble and the extra header
	test.ExpectEquality(t, b.HeaderLen(), 3)
	test.ExpectEquality(t, b.Body(), b.Addr.Add(5))
	test.ExpectEquality(t, mem.Read(b.Body()), uint8(0x00))
}

func TestBodyIsPure(t *testing.T) {
	b := &resource.Buffer{
		Data: []uint8{0x84, 0x00, 0x02},
		Addr: memory.Address{Seg: 0x2000, Off: 0x0010},
	}
	first := b.Body()
	second := b.Body()
	test.ExpectEquality(t, first, second)
	test.ExpectEquality(t, first, memory.Address{Seg: 0x2000, Off: 0x0012})
}

func TestValidate(t *testing.T) {
	b := &resource.Buffer{Name: "x", Data: []uint8{0x84}}
	test.ExpectSuccess(t, errors.Is(b.Validate(), resource.Malformed))
	b.Data = []uint8{0x84, 0x05, 0x00}
	test.ExpectSuccess(t, errors.Is(b.Validate(), resource.Malformed))

	// reported as a short read
	test.ExpectSuccess(t, errors.Is(b.Validate(), resource.ShortRead))

	// the body may be empty
	b.Data = []uint8{0x84, 0x01, 0x00}
	test.ExpectSuccess(t, b.Validate())
}

func TestUnavailable(t *testing.T) {
	mem := memory.Create()
	_, err := resource.NewLoader(fstest.MapFS{}, mem).Load("missing.drv")
	test.ExpectSuccess(t, errors.Is(err, resource.Unavailable))
}

func TestAllocationFailure(t *testing.T) {
	mem := memory.Create()
	fsys := fstest.MapFS{
		"big.drv": &fstest.MapFile{Data: make([]byte, 0x10001)},
	}
	_, err := resource.NewLoader(fsys, mem).Load("big.drv")
	test.ExpectSuccess(t, errors.Is(err, memory.AllocationFailure))
}

// shortFS reports a file size larger than the data that can be read
type shortFS struct{}

type shortFile struct {
	*bytes.Reader
}

type shortInfo struct{}

func (shortInfo) Name() string       { return "short.001" }
func (shortInfo) Size() int64        { return 100 }
func (shortInfo) Mode() fs.FileMode  { return 0444 }
func (shortInfo) ModTime() time.Time { return time.Time{} }
func (shortInfo) IsDir() bool        { return false }
func (shortInfo) Sys() any           { return nil }

func (shortFile) Stat() (fs.FileInfo, error) { return shortInfo{}, nil }
func (shortFile) Close() error               { return nil }

func (shortFS) Open(name string) (fs.File, error) {
	return shortFile{bytes.NewReader(make([]byte, 10))}, nil
}

func TestShortRead(t *testing.T) {
	mem := memory.Create()
	_, err := resource.NewLoader(shortFS{}, mem).Load("short.001")
	test.ExpectSuccess(t, errors.Is(err, resource.ShortRead))
}

func TestPatchName(t *testing.T) {
	test.ExpectEquality(t, resource.PatchName(1), "patch.001")
	test.ExpectEquality(t, resource.PatchName(101), "patch.101")
}

func TestDriverInfo(t *testing.T) {
	drv := []uint8{0xe9, 0x00, 0x00, 0x00, 0x87, 'S', 'C', 'I', 0x00}
	drv = append(drv, 4, 'f', 'b', '0', '1')
	drv = append(drv, 11, 'Y', 'a', 'm', 'a', 'h', 'a', ' ', 'F', 'B', '0', '1')
	drv = append(drv, 0x90, 0x90)

	d, err := resource.ParseDriverInfo(drv)
	test.DemandEquality(t, err, nil)
	test.ExpectEquality(t, d.ShortName, "fb01")
	test.ExpectEquality(t, d.LongName, "Yamaha FB01")
	test.ExpectEquality(t, d.String(), "Yamaha FB01 (fb01)")

	// names stop at a NUL
	drv[10] = 0x00
	d, err = resource.ParseDriverInfo(drv)
	test.DemandEquality(t, err, nil)
	test.ExpectEquality(t, d.ShortName, "")

	// truncated long name
	_, err = resource.ParseDriverInfo(drv[:16])
	test.ExpectFailure(t, err)

	_, err = resource.ParseDriverInfo(drv[:9])
	test.ExpectFailure(t, err)
}
