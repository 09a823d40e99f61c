package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init installs the process-wide logger. Console output is used in debug mode,
// JSON lines otherwise.
func Init(level string, debug bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if debug {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return InitWithWriter(out, level)
}

// InitWithWriter is Init with an explicit sink.
func InitWithWriter(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	mu.Lock()
	base = l
	mu.Unlock()
	return l
}

// L returns the process-wide logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// For returns a sub-logger tagged with the component name.
func For(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}
