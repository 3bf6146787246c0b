package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mrlokans/gkeep2notion/internal/notion"
	"github.com/mrlokans/gkeep2notion/internal/parsers"
)

// PreviewCommand renders a text file the way a Keep note body would be
// imported and prints the resulting page as JSON. Nothing is sent.
type PreviewCommand struct {
	File  string
	Title string
	Merge bool

	In  io.Reader
	Out io.Writer
}

func NewPreviewCommand() *PreviewCommand {
	return &PreviewCommand{In: os.Stdin, Out: os.Stdout}
}

func (cmd *PreviewCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("preview", pflag.ContinueOnError)

	fs.StringVarP(&cmd.File, "file", "f", "", "Text file to render, \"-\" for stdin (required)")
	fs.StringVarP(&cmd.Title, "title", "t", "", "Page title (defaults to the file name)")
	fs.BoolVarP(&cmd.Merge, "merge", "m", false, "Merge consecutive paragraph lines into one block")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s preview -f <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the Notion page a note body would become, as JSON.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s preview -f note.txt --merge\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  pbpaste | %s preview -f -\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.File == "" {
		fs.Usage()
		return fmt.Errorf("required flag --file not provided")
	}
	return nil
}

func (cmd *PreviewCommand) Run(_ context.Context) error {
	text, err := cmd.read()
	if err != nil {
		return err
	}

	title := cmd.Title
	if title == "" && cmd.File != "-" {
		title = strings.TrimSuffix(filepath.Base(cmd.File), filepath.Ext(cmd.File))
	}

	page := notion.NewPage(title, "")
	parsers.TextToPage(text, page, cmd.Merge)

	out, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	_, err = fmt.Fprintln(cmd.Out, string(out))
	return err
}

func (cmd *PreviewCommand) read() (string, error) {
	if cmd.File == "-" {
		data, err := io.ReadAll(cmd.In)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}
	return string(data), nil
}
