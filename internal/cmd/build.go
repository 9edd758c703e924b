package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/events"
	"github.com/kyoshitsu/saiten/internal/pipeline"
	"github.com/kyoshitsu/saiten/internal/preview"
	"github.com/kyoshitsu/saiten/internal/style"
)

var (
	buildForm      string
	buildSheet     string
	buildOut       string
	buildSiteTotal int
	buildPick      bool
	buildPreview   bool
	buildCols      colOverrides
)

var buildCmd = &cobra.Command{
	Use:     "build",
	GroupID: GroupGrade,
	Short:   "Build Roster and GradeBook from a combined form log",
	Long: `Build the Roster and GradeBook workbook from a combined form log.

The roster is taken from the log itself: one row per email, first response
wins, sorted by class and name. form_submit_count is the number of distinct
days each email submitted, capped at the number of sessions.

Columns are found by the hints in the config. Use --col-* to override a
guess, or --pick to review every role interactively.`,
	Example: `  saiten build --form responses.xlsx
  saiten build --form responses.csv --col-email "Email Address" --out grades.xlsx
  saiten build --form responses.xlsx --sheet "回答 1" --site-total 10 --preview`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildForm, "form", "f", "", "Combined form log (.xlsx, .xls or .csv)")
	buildCmd.Flags().StringVar(&buildSheet, "sheet", "", "Sheet of the form log (default: first)")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output workbook (default: <form>_採点台帳.xlsx)")
	buildCmd.Flags().IntVar(&buildSiteTotal, "site-total", 0,
		fmt.Sprintf("Site requirement count for every student (%d-%d; default from config)",
			pipeline.MinSiteTotal, pipeline.MaxSiteTotal))
	buildCmd.Flags().BoolVar(&buildPick, "pick", false, "Review column roles interactively")
	buildCmd.Flags().BoolVar(&buildPreview, "preview", false, "Print the roster and gradebook")
	addColumnFlags(buildCmd, &buildCols)
	_ = buildCmd.MarkFlagRequired("form")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	log, err := r.loadTable(buildForm, buildSheet)
	if err != nil {
		return err
	}

	roles, err := r.resolveRoles(log, buildCols, buildPick,
		columns.RoleTimestamp, columns.RoleEmail, columns.RoleClass, columns.RoleName)
	if err != nil {
		return err
	}

	res, err := pipeline.RunForm(pipeline.FormInput{
		Log:       log,
		Roles:     roles,
		SiteTotal: buildSiteTotal,
	}, r.cfg)
	if err != nil {
		return err
	}
	r.log(events.TypeBuild, map[string]any{"students": len(res.Rows), "workflow": "form"})
	r.reportResult(res)

	out := buildOut
	if out == "" {
		out = defaultOutPath(buildForm)
	}
	if err := res.Write(cmd.Context(), out); err != nil {
		return err
	}
	r.log(events.TypeExport, events.ExportPayload(out, len(res.Rows)))

	if buildPreview {
		printPreview(res)
	}
	fmt.Printf("%s Wrote %s (%d students)\n", style.SuccessPrefix, style.Bold.Render(out), len(res.Rows))
	fmt.Printf("  %s\n", style.Dim.Render(preview.Summary(res.Rows)))
	return nil
}
