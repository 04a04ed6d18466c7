/*
Copyright © 2025 Al Zakaria <alzakaria14@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alzakaria14/translator-program/internal/store"
)

var (
	historyDBPath string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent translation runs",
	Long: `List recorded translation runs, newest first. The FALLBACK column
counts paragraphs that kept their original text because the service
stayed unreachable, so degraded runs are easy to spot and redo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tINPUT\tOUTPUT\tLANGS\tSERVICE\tUNITS\tTRANSLATED\tCACHED\tFALLBACK\tSKIPPED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s>%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.InputFile, r.OutputFile,
				r.SourceLang, r.TargetLang, r.Service,
				r.Units, r.Translated, r.FromMemory, r.Fallback, r.Skipped)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", "./data/translator-program.db", "Database path")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
}
