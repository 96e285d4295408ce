//go:build debug

package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// SinkEnabled reports whether this build attaches a log sink at startup.
const SinkEnabled = true

// DefaultSink returns the console sink attached during application setup
// in debug builds.
func DefaultSink() (io.Writer, error) {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, nil
}
