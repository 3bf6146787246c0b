package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mrlokans/gkeep2notion/internal/audit"
	"github.com/mrlokans/gkeep2notion/internal/importers"
	"github.com/mrlokans/gkeep2notion/internal/notion"
	"github.com/mrlokans/gkeep2notion/internal/ratelimit"
)

// ImportCommand copies Keep notes and lists into Notion.
type ImportCommand struct {
	Common
	Labels  string
	Query   string
	DryRun  bool
	DumpDir string

	notionOptions []notion.Option
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)

	cmd.addFlags(fs)
	fs.StringVarP(&cmd.Labels, "labels", "l", "", "Comma separated labels to import, e.g. \"Work, Home\"")
	fs.StringVarP(&cmd.Query, "query", "q", "", "Only import items whose title or text contains this string")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Render all pages without sending anything to Notion")
	fs.StringVar(&cmd.DumpDir, "dump", "", "Write the rendered pages as JSON files to this directory (implies --dry-run)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [import] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import notes and lists from Google Keep into Notion.\n\n")
		fmt.Fprintf(os.Stderr, "Labels take priority over the query. Without either, everything is imported.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -l \"Work, Home\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q recipe --dry-run\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c ~/gkeep2notion.ini --dump ./pages\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cmd.DumpDir != "" {
		cmd.DryRun = true
	}
	return nil
}

func (cmd *ImportCommand) Run(ctx context.Context) error {
	e, err := cmd.open()
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfg.Path, err)
	}

	filter := importers.Filter{Labels: importers.ParseLabels(cmd.Labels), Query: cmd.Query}

	cmd.printf("Google Keep -> Notion\n")
	cmd.printf("=====================\n")
	if cmd.DryRun {
		cmd.printf("DRY RUN MODE - Nothing will be sent to Notion\n")
	}
	cmd.printf("Account: %s\n", cfg.Email)
	cmd.printf("Filter:  %s\n\n", filter.String())

	session := cmd.keepClient()
	outcome, err := cmd.authenticator(e, session).Login(ctx, cfg.Email)
	if err != nil {
		return err
	}
	cmd.Logger.Debug("keep session ready", "outcome", outcome.String())

	var dest importers.Destination
	var dry *importers.DryRun
	if cmd.DryRun {
		dry = cmd.dryRun(cfg.SnapshotDir)
		dest = dry
	} else {
		opts := append([]notion.Option{
			notion.WithThrottle(ratelimit.New(cfg.RateLimit)),
			notion.WithLogger(cmd.Logger),
		}, cmd.notionOptions...)
		dest = notion.NewClient(cfg.Token, opts...)
	}

	run, err := e.audit.StartRun(cfg.Email, filter.String(), cmd.DryRun)
	if err != nil {
		return err
	}

	imp := importers.NewImporter(session, dest, importers.Options{
		RootID:          cfg.RootID,
		NotesTitle:      cfg.NotesTitle,
		TodosTitle:      cfg.TodosTitle,
		ImportNotes:     cfg.ImportNotes,
		ImportTodos:     cfg.ImportTodos,
		ImportMedia:     cfg.ImportMedia,
		MergeParagraphs: cfg.MergeParagraphs,
	}, cmd.Logger)
	imp.SetRecorder(run)

	res, runErr := imp.Run(ctx, filter)
	if err := run.Finish(audit.Counts{
		Notes:      res.NotesImported,
		Lists:      res.ListsImported,
		Skipped:    res.Skipped,
		Categories: res.CategoriesCreated,
		Blocks:     res.BlocksCreated,
	}, runErr); err != nil {
		cmd.Logger.Warn("failed to record import run", "error", err)
	}

	cmd.printSummary(res, run.ID(), dry)
	return runErr
}

func (cmd *ImportCommand) dryRun(snapshotDir string) *importers.DryRun {
	dir := cmd.DumpDir
	if dir == "" {
		dir = snapshotDir
	}
	if dir == "" {
		return importers.NewDryRun(nil, cmd.Logger)
	}
	cmd.printf("Rendered pages are written to %s\n\n", dir)
	return importers.NewDryRun(audit.NewSnapshotter(dir), cmd.Logger)
}

func (cmd *ImportCommand) printSummary(res importers.Result, runID uint, dry *importers.DryRun) {
	cmd.printf("\n=== Import Summary ===\n")
	cmd.printf("Notes imported:     %d\n", res.NotesImported)
	cmd.printf("Lists imported:     %d\n", res.ListsImported)
	cmd.printf("Categories created: %d\n", res.CategoriesCreated)
	cmd.printf("Blocks created:     %d\n", res.BlocksCreated)
	if res.Skipped > 0 {
		cmd.printf("Skipped:            %d\n", res.Skipped)
	}
	if res.MediaSkipped > 0 {
		cmd.printf("Attachments left:   %d\n", res.MediaSkipped)
	}
	if dry != nil {
		cmd.printf("\nDry run complete, %d pages rendered. Run without --dry-run to import.\n", dry.Pages())
	}
	cmd.printf("Run #%d recorded, see `history --run %d`\n", runID, runID)
}
