// =============================================================================
// Shelf Inventory Reconciler - Normalize Command
// =============================================================================
//
// COMMAND USAGE:
//   shelf-inventory normalize --scheme LC "QA76.9 .D3 1999" "PS3572 .A39"
//
// Prints the sort key of each call number, one per line, tab separated.
// Unparsable call numbers print their sentinel key.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/shelf-inventory/internal/callnumber"
)

var (
	normalizeScheme        string
	normalizeProblemsToTop bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [call numbers...]",
	Short: "Print the sort keys of call numbers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scheme, err := callnumber.ParseScheme(normalizeScheme)
		if err != nil {
			return err
		}

		for _, raw := range args {
			key := callnumber.Normalize(raw, scheme, normalizeProblemsToTop)
			if callnumber.IsUnparsable(key) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(unparsable)\n", raw, key)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVar(&normalizeScheme, "scheme", "LC", "Classification scheme: LC or Dewey")
	normalizeCmd.Flags().BoolVar(&normalizeProblemsToTop, "problems-to-top", false, "Sort unparsable call numbers first")
}
