// Package logging builds the process logger and adapts it to the places
// that only accept a narrow reporting capability.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mal-ai/internal/ingest"
)

// New returns a logger writing to w (stderr when nil). format is "json" or
// "console"; unknown levels fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Reporter logs isolated extraction failures as warnings.
func Reporter(log zerolog.Logger) ingest.Reporter {
	return ingest.ReporterFunc(func(f ingest.Failure) {
		ev := log.Warn().Err(f.Err).Str("kind", f.Kind.String())
		if f.Document > 0 {
			ev = ev.Int("document", f.Document)
		}
		if f.Page > 0 {
			ev = ev.Int("page", f.Page)
		}
		if f.Image > 0 {
			ev = ev.Int("image", f.Image)
		}
		ev.Msg("Skipped content during extraction")
	})
}
