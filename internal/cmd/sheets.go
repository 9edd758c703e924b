package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoshitsu/saiten/internal/sheet"
	"github.com/kyoshitsu/saiten/internal/style"
)

var sheetsCmd = &cobra.Command{
	Use:     "sheets FILE",
	GroupID: GroupInspect,
	Short:   "List the sheets of a workbook",
	Args:    cobra.ExactArgs(1),
	RunE:    runSheets,
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
}

func runSheets(cmd *cobra.Command, args []string) error {
	names, err := sheet.SheetNames(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, style.Dim.Render("(csv: single table, no sheets)"))
		return nil
	}
	for i, n := range names {
		fmt.Fprintf(out, "%2d  %s\n", i+1, n)
	}
	return nil
}
