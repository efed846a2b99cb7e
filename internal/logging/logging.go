package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger. format is "console" or "json".
func New(level, format string) (zerolog.Logger, error) {
	return newLogger(os.Stderr, level, format)
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	switch format {
	case "", "console":
		console := zerolog.ConsoleWriter{
			Out:           w,
			TimeFormat:    "15:04:05",
			PartsOrder:    []string{"time", "level", "module", "message"},
			FieldsExclude: []string{"module"},
		}
		console.FormatPartValueByName = func(i any, s string) string {
			if s == "module" && i != nil {
				return strings.ToUpper(fmt.Sprintf("%s", i))
			}
			return ""
		}
		out = console
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

// Module returns a child logger tagged with a module name
func Module(logger zerolog.Logger, module string) zerolog.Logger {
	return logger.With().Str("module", module).Logger()
}
