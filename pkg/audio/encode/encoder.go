// ABOUTME: Encoder interface implemented by the pipeline's in-process Opus encoder
// ABOUTME: internal/pipeline frames one caller's worth of samples per Encode call
package encode

// Encoder converts one fixed-size frame of interleaved PCM int32
// samples to an already-packetized encoded unit. The pipeline is
// responsible for chunking a whole source's samples into frames of
// FrameSize length before calling Encode repeatedly.
type Encoder interface {
	Encode(samples []int32) ([]byte, error)

	// Close releases encoder resources.
	Close() error
}
