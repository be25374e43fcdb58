// =============================================================================
// Shelf Inventory Reconciler - History Command
// =============================================================================
//
// COMMAND USAGE:
//   shelf-inventory history [--library MAIN] [--limit 20]
//
// Lists recorded runs, newest first.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/shelf-inventory/internal/history"
)

var (
	historyLibrary string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past inventory runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(mainConfig.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), historyLibrary, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tLIBRARY\tLOCATIONS\tSCHEME\tITEMS\tPROBLEMS\tORDER\tOUTPUT")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
				run.CreatedAt.Local().Format(time.DateTime),
				run.Library,
				strings.Join(run.Locations, ","),
				run.Scheme,
				run.ItemCount,
				run.ProblemCount,
				run.Counts.Order,
				run.OutputFile,
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyLibrary, "library", "", "Only list runs for this library code")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
}
