// ABOUTME: Tests for WAV reading and channel downmixing
package pipeline

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeMinimalWav writes a canonical 16-bit PCM RIFF/WAVE file with the
// given channel count and interleaved int16 samples, entirely by hand
// since the format is small and fixed.
func writeMinimalWav(t *testing.T, path string, sampleRate, channels int, samples []int16) {
	t.Helper()

	dataSize := len(samples) * 2
	blockAlign := channels * 2
	byteRate := sampleRate * blockAlign

	buf := make([]byte, 0, 44+dataSize)
	buf = append(buf, 'R', 'I', 'F', 'F')
	buf = appendUint32(buf, uint32(36+dataSize))
	buf = append(buf, 'W', 'A', 'V', 'E')

	buf = append(buf, 'f', 'm', 't', ' ')
	buf = appendUint32(buf, 16)
	buf = appendUint16(buf, 1) // PCM
	buf = appendUint16(buf, uint16(channels))
	buf = appendUint32(buf, uint32(sampleRate))
	buf = appendUint32(buf, uint32(byteRate))
	buf = appendUint16(buf, uint16(blockAlign))
	buf = appendUint16(buf, 16) // bits per sample

	buf = append(buf, 'd', 'a', 't', 'a')
	buf = appendUint32(buf, uint32(dataSize))
	for _, s := range samples {
		buf = appendUint16(buf, uint16(s))
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func TestReadWavParsesStereoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeMinimalWav(t, path, 48000, 2, []int16{100, 200, 300, 400})

	src, err := readWav(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Channels != 2 || src.SampleRate != 48000 || src.Frames != 2 {
		t.Fatalf("unexpected shape: %+v", src)
	}
}

func TestDownmixStereoToMonoAverages(t *testing.T) {
	src := pcmSource{Channels: 2, Frames: 2, Samples: []int32{100, 300, 200, 400}}
	out := downmix(src, 1)
	if len(out) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(out))
	}
	if out[0] != 200 || out[1] != 300 {
		t.Fatalf("expected averaged samples [200 300], got %v", out)
	}
}

func TestDownmixMonoToStereoDuplicates(t *testing.T) {
	src := pcmSource{Channels: 1, Frames: 2, Samples: []int32{50, 60}}
	out := downmix(src, 2)
	want := []int32{50, 50, 60, 60}
	if len(out) != len(want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}

func TestDownmixSameChannelsIsNoop(t *testing.T) {
	src := pcmSource{Channels: 2, Frames: 1, Samples: []int32{1, 2}}
	out := downmix(src, 2)
	if len(out) != 2 || out[0] != 1 || out[1] != 2 {
		t.Fatalf("expected a pass-through copy, got %v", out)
	}
}
