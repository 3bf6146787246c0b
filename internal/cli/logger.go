package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// NewLogger returns a tint handler logger on stderr. Colours are only used
// when stderr is a terminal.
func NewLogger(verbose bool) *slog.Logger {
	return newLogger(colorable.NewColorable(os.Stderr), verbose, !isatty.IsTerminal(os.Stderr.Fd()))
}

func newLogger(w io.Writer, verbose, noColor bool) *slog.Logger {
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	if verbose {
		ll.Set(slog.LevelDebug)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Drop empty values, e.g. untitled notes.
			switch v := a.Value.Any().(type) {
			case string:
				if v == "" {
					return slog.Attr{}
				}
			case nil:
				return slog.Attr{}
			}
			return a
		},
	}))
}
