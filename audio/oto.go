//go:build !headless

package audio

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
)

// Output plays samples through the host's audio device.
type Output struct {
	p *oto.Player
}

// Open starts playing samples read from r. Only one Output can be opened
// during the lifetime of the program.
func Open(r io.Reader) (*Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleFreq,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}

	<-ready

	o := &Output{
		p: ctx.NewPlayer(r),
	}
	o.p.Play()

	return o, nil
}

// Close stops playback.
func (o *Output) Close() error {
	return o.p.Close()
}
