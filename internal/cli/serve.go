package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gradeflow/internal/server"
)

// janitorInterval is how often expired sessions are evicted.
const janitorInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the gradeflow HTTP server.

The server accepts batch uploads on POST /process, streams grading
progress over SSE (/stream/{session}) or websocket (/ws/{session}),
and serves the finished roster and Excel report for download.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner, store, collector, err := buildRunner(ctx)
		if err != nil {
			return err
		}
		store.StartJanitor(ctx, janitorInterval)

		srv := server.New(cfg, runner, store, collector, logger)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}
