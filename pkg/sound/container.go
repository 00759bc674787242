// ABOUTME: A minimal framed container for raw Opus packet streams
// ABOUTME: The fast decode path recognizes this; anything else falls back to the media tool
package sound

import (
	"bytes"
	"encoding/binary"
)

// opusStreamMagic tags a byte stream as a sequence of raw Opus packets
// with no real container framing, letting the decoder skip the
// media-tool subprocess for files produced this way.
var opusStreamMagic = [4]byte{'S', 'C', 'O', 'A'}

// WriteOpusPacketStream frames packets (each one already-encoded Opus
// data) behind the fast-path magic header.
func WriteOpusPacketStream(sampleRate, channels int, packets [][]byte) []byte {
	buf := &bytes.Buffer{}
	buf.Write(opusStreamMagic[:])
	header := make([]byte, 6)
	binary.BigEndian.PutUint32(header[0:4], uint32(sampleRate))
	binary.BigEndian.PutUint16(header[4:6], uint16(channels))
	buf.Write(header)

	for _, p := range packets {
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(p)))
		buf.Write(lenBuf[:])
		buf.Write(p)
	}
	return buf.Bytes()
}

// parseOpusPacketStream decodes the fast-path framing. ok is false if
// data does not start with the magic header, in which case the caller
// should fall back to the subprocess decoder.
func parseOpusPacketStream(data []byte) (sampleRate, channels int, packets [][]byte, ok bool) {
	if len(data) < 10 || !bytes.Equal(data[:4], opusStreamMagic[:]) {
		return 0, 0, nil, false
	}

	sampleRate = int(binary.BigEndian.Uint32(data[4:8]))
	channels = int(binary.BigEndian.Uint16(data[8:10]))

	rest := data[10:]
	for len(rest) > 0 {
		if len(rest) < 2 {
			return 0, 0, nil, false
		}
		n := int(binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
		if len(rest) < n {
			return 0, 0, nil, false
		}
		packets = append(packets, rest[:n])
		rest = rest[n:]
	}
	return sampleRate, channels, packets, true
}
