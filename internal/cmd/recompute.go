package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoshitsu/saiten/internal/events"
	"github.com/kyoshitsu/saiten/internal/pipeline"
	"github.com/kyoshitsu/saiten/internal/preview"
	"github.com/kyoshitsu/saiten/internal/style"
)

var (
	recomputeIn        string
	recomputeOut       string
	recomputeSiteTotal int
	recomputePreview   bool
)

var recomputeCmd = &cobra.Command{
	Use:     "recompute",
	GroupID: GroupGrade,
	Short:   "Recompute scores after editing a GradeBook",
	Long: `Recompute every derived column of an exported workbook.

Edit the input columns of the GradeBook sheet (absent_full, report_status,
paiza_done, site_requirements_done, site_requirements_total, final_status,
attitude_penalty, form_submit_count) and run this command. Derived columns
are always rewritten, so editing them by hand has no effect. Non-numeric
input cells are read as 0 and reported.`,
	Example: `  saiten recompute --in grades.xlsx
  saiten recompute --in grades.xlsx --config course.toml --out grades_v2.xlsx`,
	Args: cobra.NoArgs,
	RunE: runRecompute,
}

func init() {
	recomputeCmd.Flags().StringVarP(&recomputeIn, "in", "i", "", "Workbook exported by build or registry")
	recomputeCmd.Flags().StringVarP(&recomputeOut, "out", "o", "", "Output workbook (default: overwrite --in)")
	recomputeCmd.Flags().IntVar(&recomputeSiteTotal, "site-total", 0,
		fmt.Sprintf("Override the site requirement count for every student (%d-%d)",
			pipeline.MinSiteTotal, pipeline.MaxSiteTotal))
	recomputeCmd.Flags().BoolVar(&recomputePreview, "preview", false, "Print the recomputed gradebook")
	_ = recomputeCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(recomputeCmd)
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	res, err := pipeline.RecomputeWorkbook(recomputeIn, recomputeSiteTotal, r.cfg)
	if err != nil {
		return err
	}
	r.log(events.TypeRecompute, map[string]any{"path": recomputeIn, "students": len(res.Rows), "coerced": res.ParseCoercions})
	if res.ParseCoercions > 0 {
		r.warn("%d non-numeric input cell(s) were read as 0", res.ParseCoercions)
	}

	out := recomputeOut
	if out == "" {
		out = recomputeIn
	}
	if err := res.Write(cmd.Context(), out); err != nil {
		return err
	}
	r.log(events.TypeExport, events.ExportPayload(out, len(res.Rows)))

	if recomputePreview {
		fmt.Println(preview.GradeBook(res.Rows, previewRows))
	}
	fmt.Printf("%s Recomputed %s (%d students)\n", style.SuccessPrefix, style.Bold.Render(out), len(res.Rows))
	fmt.Printf("  %s\n", style.Dim.Render(preview.Summary(res.Rows)))
	return nil
}
