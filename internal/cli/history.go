package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/mrlokans/gkeep2notion/internal/entities"
)

// HistoryCommand lists past import runs, shows the pages of one run, or
// prunes old runs.
type HistoryCommand struct {
	Common
	Limit     int
	RunID     uint
	PruneDays int
}

func NewHistoryCommand() *HistoryCommand {
	return &HistoryCommand{}
}

func (cmd *HistoryCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)

	cmd.addFlags(fs)
	fs.IntVarP(&cmd.Limit, "limit", "n", 10, "Number of runs to list")
	fs.UintVar(&cmd.RunID, "run", 0, "Show the pages created by this run")
	fs.IntVar(&cmd.PruneDays, "prune", 0, "Delete runs older than this many days")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s history [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show the import history kept in the local database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.PruneDays < 0 {
		return fmt.Errorf("--prune must be a positive number of days")
	}
	return nil
}

func (cmd *HistoryCommand) Run(_ context.Context) error {
	e, err := cmd.open()
	if err != nil {
		return err
	}
	defer e.Close()

	switch {
	case cmd.PruneDays > 0:
		n, err := e.audit.Prune(time.Duration(cmd.PruneDays) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		cmd.printf("Deleted %d runs older than %d days\n", n, cmd.PruneDays)
		return nil

	case cmd.RunID > 0:
		run, err := e.audit.GetRun(cmd.RunID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("run %d not found", cmd.RunID)
		}
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		cmd.printRun(run)
		return nil
	}

	runs, err := e.audit.RecentRuns(cmd.Limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(runs) == 0 {
		cmd.printf("No imports recorded yet\n")
		return nil
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tNOTES\tLISTS\tFILTER")
	for _, r := range runs {
		status := string(r.Status)
		if r.DryRun {
			status += " (dry run)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), status, r.NotesImported, r.ListsImported, r.Filter)
	}
	return w.Flush()
}

func (cmd *HistoryCommand) printRun(run *entities.ImportRun) {
	cmd.printf("Run #%d (%s), %s\n", run.ID, run.Status, run.Filter)
	if run.ErrorMsg != "" {
		cmd.printf("Error: %s\n", run.ErrorMsg)
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tTITLE\tNOTION ID\tBLOCKS")
	for _, p := range run.Pages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.Kind, p.Title, p.NotionPageID, p.Blocks)
	}
	w.Flush()
}
