//go:build !debug

package logging

import "io"

// SinkEnabled reports whether this build attaches a log sink at startup.
const SinkEnabled = false

// DefaultSink returns no sink. Release builds configure no logging
// destination at startup.
func DefaultSink() (io.Writer, error) {
	return nil, nil
}
