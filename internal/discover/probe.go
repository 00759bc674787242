// ABOUTME: Cheap WAV header probing to check the 48kHz PCM source invariant
package discover

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Info is the probed shape of a source WAV file, cheap to read without
// decoding the full PCM payload.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Probe reads just the WAV header at path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, fmt.Errorf("probe %s: not a valid WAV file", path)
	}
	dec.ReadInfo()

	return Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}, nil
}

// Conforms48kHz reports whether info's sample rate is 48 kHz. Only the
// sample rate is checked; the sample encoding is not examined.
func (i Info) Conforms48kHz() bool {
	return i.SampleRate == 48000
}
