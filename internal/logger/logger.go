// Package logger installs the process-wide slog handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup installs a colored handler when stderr is a terminal, and a plain text handler otherwise.
func Setup(debug bool) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), debug)))
}

// NewHandler returns the handler Setup would install for the given writer.
func NewHandler(out io.Writer, terminal, debug bool) slog.Handler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	if terminal {
		return tint.NewHandler(out, &tint.Options{
			NoColor:   runtime.GOOS == "windows",
			AddSource: debug,
			Level:     level,
			ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
				if attr.Key == slog.TimeKey {
					return slog.Attr{}
				}

				return attr
			},
		})
	}

	return slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
}
