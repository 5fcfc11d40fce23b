//go:build headless

package audio

import (
	"io"

	"github.com/jetsetilly/sci0play/logger"
)

// Output discards samples. Builds with the headless tag have no audio device.
type Output struct{}

// Open returns an Output that never reads from r.
func Open(r io.Reader) (*Output, error) {
	logger.Log(logger.Allow, "audio", "headless build: no audio output")
	return &Output{}, nil
}

// Close does nothing.
func (o *Output) Close() error {
	return nil
}
