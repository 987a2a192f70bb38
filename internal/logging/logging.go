// Package logging wires the process-wide zerolog logger used by the CLI,
// the pipeline stages, and the web server.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init routes the global logger through a console writer on stderr. Info
// level carries run outcomes; debug adds per-stage timing, retry attempts,
// and token accounting.
func Init(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	// Stage durations are sub-second; millisecond resolution keeps them legible.
	zerolog.DurationFieldUnit = time.Millisecond
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	})
}
