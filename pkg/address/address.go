// ABOUTME: Hashing and file-name formatting/parsing
// ABOUTME: "{bitrate}k.{channels}ch.{hash}" with no zero-padding
package address

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Hash returns a 64-bit unsigned hash of interleaved little-endian int32
// PCM samples. It is deterministic across runs and platforms: the same
// sample sequence always produces the same digest, which is the whole
// of the content-addressing contract (P1).
func Hash(samples []int32) uint64 {
	buf := make([]byte, 4)
	h := fnv.New64a()
	for _, s := range samples {
		binary.LittleEndian.PutUint32(buf, uint32(s))
		h.Write(buf)
	}
	return h.Sum64()
}

// FileName formats the content-addressed base name (no extension) for
// the given encode parameters and sample hash. bitrateKbps and channels
// must satisfy the atlas invariants (bitrate >= 1, channels in {1, 2});
// FileName does not validate them, and neither does the pipeline's
// parameter selection.
func FileName(bitrateKbps, channels int, hash uint64) string {
	return fmt.Sprintf("%dk.%dch.%d", bitrateKbps, channels, hash)
}

// Channels recovers the channel count encoded in a file name produced
// by FileName, by locating the "<n>ch." substring. This lets the
// runtime size a placeholder buffer before the corresponding file has
// been fetched. It returns false if fileName does not carry a
// recognizable "<n>ch." field.
func Channels(fileName string) (int, bool) {
	idx := strings.Index(fileName, "ch.")
	if idx <= 0 {
		return 0, false
	}
	start := idx
	for start > 0 && fileName[start-1] >= '0' && fileName[start-1] <= '9' {
		start--
	}
	if start == idx {
		return 0, false
	}
	n, err := strconv.Atoi(fileName[start:idx])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bitrate recovers the "<n>k." bitrate field from a file name produced
// by FileName.
func Bitrate(fileName string) (int, bool) {
	idx := strings.Index(fileName, "k.")
	if idx <= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fileName[:idx])
	if err != nil {
		return 0, false
	}
	return n, true
}
