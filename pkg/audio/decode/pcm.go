// ABOUTME: PCM decoder for the subprocess fallback's demuxed stdout
// ABOUTME: Decodes raw 16-bit or 24-bit little-endian PCM to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/jadujoel/scode/pkg/audio"
)

// PCMDecoder decodes the raw little-endian PCM bytes the media-tool
// subprocess emits on stdout for any container the fast path does not
// recognize.
type PCMDecoder struct {
	bitDepth int
}

// NewPCM returns a Decoder for the given bit depth. format.Codec must
// be "pcm" and format.BitDepth must be 16 or 24.
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("%w for pcm decoder: %s", ErrUnsupportedCodec, format.Codec)
	}
	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("%w: %d (supported: 16, 24)", ErrUnsupportedBitDepth, format.BitDepth)
	}

	return &PCMDecoder{bitDepth: format.BitDepth}, nil
}

// Decode converts raw little-endian PCM bytes to int32 samples.
func (d *PCMDecoder) Decode(data []byte) ([]int32, error) {
	if d.bitDepth == 24 {
		numSamples := len(data) / 3
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			samples[i] = audio.SampleFrom24Bit(b)
		}
		return samples, nil
	}

	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples, nil
}

// Close is a no-op; PCMDecoder holds no resources.
func (d *PCMDecoder) Close() error {
	return nil
}
