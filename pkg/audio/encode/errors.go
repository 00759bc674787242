// ABOUTME: Sentinel errors for the encode package
// ABOUTME: Compared with errors.Is at package boundaries, per the pipeline's error taxonomy
package encode

import "errors"

// ErrUnsupportedCodec is returned when NewOpus is asked to build an
// encoder for a Format.Codec other than "opus".
var ErrUnsupportedCodec = errors.New("unsupported codec")
