package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompt reads the password from the terminal without echo. When
// In is not a terminal a single line is read instead, so passwords can be
// piped in.
type TerminalPrompt struct {
	In  *os.File
	Out io.Writer
}

func NewTerminalPrompt() *TerminalPrompt {
	return &TerminalPrompt{In: os.Stdin, Out: os.Stderr}
}

func (p *TerminalPrompt) Password(email string) (string, error) {
	fmt.Fprintf(p.Out, "Password for %s: ", email)
	defer fmt.Fprintln(p.Out)

	fd := int(p.In.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
