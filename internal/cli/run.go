package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gradeflow/internal/batch"
)

var (
	runTask   string
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run <archive.zip> <roster.csv>",
	Short: "Grade a batch of submissions locally",
	Long: `Grade a ZIP archive of submissions against a CSV roster without
starting the server. The annotated roster and Excel report are written
to the output directory.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		archivePath, rosterPath := args[0], args[1]
		for _, p := range []string{archivePath, rosterPath} {
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("open %s: %w", p, err)
			}
		}
		if _, ok := cfg.Tasks[runTask]; !ok {
			return fmt.Errorf("unknown task type %q, see 'gradeflow tasks'", runTask)
		}
		cfg.UploadDir = runOutput

		runner, store, _, err := buildRunner(cmd.Context())
		if err != nil {
			return err
		}

		sess := store.Create(runTask, archivePath, rosterPath)
		events := runner.Run(cmd.Context(), sess)

		if term.IsTerminal(int(os.Stdout.Fd())) {
			return runBatchProgress(events)
		}
		return renderPlain(events)
	},
}

// renderPlain prints one line per event for non-interactive use (pipes,
// CI). The interactive path is in progress.go.
func renderPlain(events <-chan batch.Event) error {
	for ev := range events {
		switch ev.Type {
		case batch.EventProgress:
			r := ev.Result
			fmt.Printf("[%d/%d] %s -> %s (%s, %d%%) score=%s\n",
				ev.Current, ev.Total, r.FileName, r.MatchedName, r.MatchStatus, r.MatchPercentage, r.Score)
		case batch.EventError:
			fmt.Printf("error: %s: %s\n", ev.File, ev.Message)
		case batch.EventComplete:
			fmt.Printf("done: %d files\n  %s\n  %s\n", ev.Total, ev.CSVFilename, ev.ExcelFilename)
		case batch.EventFatalError:
			return fmt.Errorf("%s", ev.Message)
		}
	}
	return nil
}

func init() {
	runCmd.Flags().StringVarP(&runTask, "task", "t", "essay", "task type to grade")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", ".", "directory for the roster and report artifacts")
}
