// ABOUTME: Reads a WAV source's full PCM payload for hashing and downmixing
package pipeline

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jadujoel/scode/pkg/audio"
)

// pcmSource is a fully decoded WAV source, at its own channel count and
// bit depth, ready to be downmixed to a target channel count.
type pcmSource struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Frames     int
	Samples    []int32 // interleaved at Channels
}

func readWav(path string) (pcmSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcmSource{}, fmt.Errorf("read wav %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	var buf *goaudio.IntBuffer
	buf, err = dec.FullPCMBuffer()
	if err != nil {
		return pcmSource{}, fmt.Errorf("read wav %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	bitDepth := buf.SourceBitDepth
	samples := make([]int32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = toInternalSample(v, bitDepth)
	}

	return pcmSource{
		Channels:   channels,
		SampleRate: buf.Format.SampleRate,
		BitDepth:   bitDepth,
		Frames:     len(samples) / max(channels, 1),
		Samples:    samples,
	}, nil
}

func toInternalSample(v, bitDepth int) int32 {
	switch bitDepth {
	case 16:
		return audio.SampleFromInt16(int16(v))
	default:
		return int32(v)
	}
}

// downmix converts src's interleaved samples to targetChannels,
// averaging to mono or duplicating to stereo as needed. A target equal
// to the source channel count returns src.Samples itself, uncopied.
func downmix(src pcmSource, targetChannels int) []int32 {
	if targetChannels == src.Channels {
		return src.Samples
	}

	out := make([]int32, src.Frames*targetChannels)
	for frame := 0; frame < src.Frames; frame++ {
		in := src.Samples[frame*src.Channels : frame*src.Channels+src.Channels]

		switch {
		case targetChannels == 1:
			var sum int64
			for _, s := range in {
				sum += int64(s)
			}
			out[frame] = int32(sum / int64(len(in)))
		case targetChannels == 2 && src.Channels == 1:
			out[frame*2] = in[0]
			out[frame*2+1] = in[0]
		default:
			for ch := 0; ch < targetChannels; ch++ {
				if ch < len(in) {
					out[frame*targetChannels+ch] = in[ch]
				}
			}
		}
	}
	return out
}
