package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List configured task types",
	Run: func(cmd *cobra.Command, args []string) {
		types := make([]string, 0, len(cfg.Tasks))
		for t := range cfg.Tasks {
			types = append(types, t)
		}
		sort.Strings(types)

		for _, t := range types {
			path := cfg.Tasks[t]
			status := ""
			if _, err := os.Stat(path); err != nil {
				status = "  (instructions missing)"
			}
			fmt.Printf("%-10s %s%s\n", t, path, status)
		}
	},
}
