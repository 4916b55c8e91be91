// Package applog installs the process-wide, colour-and-level-tagged
// logging sink every webserv subsystem consults: subsystems never hold
// the logger directly, they call L() at the point of use.
package applog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(io.Discard)
)

// Init installs the global logger, writing level/colour-tagged lines to
// w (typically os.Stderr). Call once at startup before any subsystem
// logs; safe to call again in tests to redirect output.
func Init(w io.Writer, level zerolog.Level) {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	l := zerolog.New(console).Level(level).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()
}

// L returns the current global logger. Subsystems should call this at
// the point of use rather than caching the result, so Init (or a test's
// redirect) takes effect everywhere.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &logger
}

func init() {
	Init(os.Stderr, zerolog.InfoLevel)
}
