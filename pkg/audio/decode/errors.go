// ABOUTME: Sentinel errors for the decode package
// ABOUTME: Compared with errors.Is at package boundaries, per the pipeline's error taxonomy
package decode

import "errors"

var (
	// ErrUnsupportedCodec is returned when a constructor is asked to
	// build a decoder for a Format.Codec it does not implement.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrUnsupportedBitDepth is returned by NewPCM for any bit depth
	// other than 16 or 24.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)
