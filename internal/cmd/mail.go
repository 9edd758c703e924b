package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoshitsu/saiten/internal/pipeline"
	"github.com/kyoshitsu/saiten/internal/scoring"
	"github.com/kyoshitsu/saiten/internal/sheet"
)

var (
	mailIn       string
	mailFailOnly bool
)

var mailCmd = &cobra.Command{
	Use:     "mail",
	GroupID: GroupInspect,
	Short:   "Print the result line for each student",
	Long: `Print one tab-separated "email<TAB>mail line" per student of a GradeBook.

Scores are recomputed from the sheet's inputs first, so the lines match the
current config even if the workbook was edited without running recompute.`,
	Example: `  saiten mail --in grades.xlsx
  saiten mail --in grades.xlsx --fail-only`,
	Args: cobra.NoArgs,
	RunE: runMail,
}

func init() {
	mailCmd.Flags().StringVarP(&mailIn, "in", "i", "", "Workbook exported by build or registry")
	mailCmd.Flags().BoolVar(&mailFailOnly, "fail-only", false, "Only print students who did not pass")
	_ = mailCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(mailCmd)
}

func runMail(cmd *cobra.Command, _ []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	book, err := sheet.Load(mailIn, pipeline.SheetGradeBook)
	if err != nil {
		return fmt.Errorf("reading gradebook: %w", err)
	}
	parsed, stats := scoring.ParseTable(book, r.cfg.Config)
	if stats.Coerced > 0 {
		r.warn("%d non-numeric input cell(s) were read as 0", stats.Coerced)
	}
	if stats.UnknownStatus > 0 {
		r.warn("%d unrecognized report/final status cell(s) scored 0", stats.UnknownStatus)
	}
	rows := scoring.Recompute(parsed, r.cfg.Config)

	out := cmd.OutOrStdout()
	for _, row := range rows {
		if mailFailOnly && row.FinalJudgement == scoring.JudgementPass {
			continue
		}
		who := row.Email
		if who == "" {
			who = row.StudentNo
		}
		fmt.Fprintf(out, "%s\t%s\n", who, row.MailLine)
	}
	return nil
}
