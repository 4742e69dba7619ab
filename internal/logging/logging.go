// Package logging installs the process-wide slog logger used by every
// clipvault command: tinted, human-readable lines on a terminal, JSON
// lines when output is redirected or the daemon runs unattended.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

const timeFormat = "15:04:05.000"

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Init installs the global logger. format is auto, text, or json; auto
// picks text on a terminal and json otherwise. level is a slog level name;
// empty selects info, or debug when interactive. Unknown values fall back
// to those defaults — logging setup never stops the program.
func Init(format, level string, interactive bool) {
	slog.SetDefault(slog.New(
		handler(os.Stderr, format, parseLevel(level, interactive)),
	))
}

func parseLevel(name string, interactive bool) slog.Level {
	lvl := slog.LevelInfo
	if interactive {
		lvl = slog.LevelDebug
	}
	if name == "" {
		return lvl
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(name)); err != nil {
		return lvl
	}
	return parsed
}

func handler(w io.Writer, format string, lvl slog.Level) slog.Handler {
	tinted := false
	switch strings.ToLower(format) {
	case "text", "tint", "human":
		tinted = true
	case "json":
	default: // auto
		tinted = IsTTY(w)
	}

	if tinted {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      lvl,
			TimeFormat: timeFormat,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
}
