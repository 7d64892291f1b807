package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// New builds the application logger. Local runs get a human readable console
// writer; dev and prod emit JSON lines.
func New(env, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimestampFieldName = "timestamp"

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if env == EnvLocal || env == "" {
		console := zerolog.NewConsoleWriter()
		console.TimeFormat = time.DateTime
		console.Out = w
		w = console
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}

// Nop is used where no logger was configured.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
