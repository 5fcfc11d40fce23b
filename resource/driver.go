package resource

import (
	"bytes"
	"fmt"
	"io"
)

// the driver header contains two length-prefixed strings. the first length
// byte is at this offset
const driverNamesOffset = 9

// DriverInfo is the identification found in the driver header.
type DriverInfo struct {
	ShortName string
	LongName  string
}

func (d DriverInfo) String() string {
	return fmt.Sprintf("%s (%s)", d.LongName, d.ShortName)
}

// readPString reads a string prefixed by its length as a single byte. The
// string stops early at a NUL byte.
func readPString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// ParseDriverInfo decodes the short and long names from a driver module.
func ParseDriverInfo(data []uint8) (DriverInfo, error) {
	var d DriverInfo

	if len(data) <= driverNamesOffset {
		return d, fmt.Errorf("driver: module too short for header (%d bytes)", len(data))
	}

	r := bytes.NewReader(data[driverNamesOffset:])

	var err error
	d.ShortName, err = readPString(r)
	if err != nil {
		return d, fmt.Errorf("driver: short name: %w", err)
	}
	d.LongName, err = readPString(r)
	if err != nil {
		return d, fmt.Errorf("driver: long name: %w", err)
	}
	return d, nil
}
