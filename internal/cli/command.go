// Package cli implements the gkeep2notion subcommands. Each command parses
// its own flags and is then run once with a context that is cancelled on
// interrupt.
package cli

import (
	"context"
	"strings"
)

type Command interface {
	ParseFlags(args []string) error
	Run(ctx context.Context) error
}

// Commands maps subcommand names to constructors.
var Commands = map[string]func() Command{
	"import":  func() Command { return NewImportCommand() },
	"login":   func() Command { return NewLoginCommand() },
	"logout":  func() Command { return NewLogoutCommand() },
	"preview": func() Command { return NewPreviewCommand() },
	"history": func() Command { return NewHistoryCommand() },
}

// Resolve picks the command for args. Without a subcommand name, or when
// the first argument is a flag, the import command runs with all args.
func Resolve(args []string) (Command, []string, bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return NewImportCommand(), args, true
	}
	newCmd, ok := Commands[args[0]]
	if !ok {
		return nil, nil, false
	}
	return newCmd(), args[1:], true
}
