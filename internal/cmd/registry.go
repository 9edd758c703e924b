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
	registryRoster      string
	registryRosterSheet string
	registryForm        string
	registrySheet       string
	registryOut         string
	registrySiteTotal   int
	registryPick        bool
	registryPreview     bool
	registryCols        colOverrides
)

var registryCmd = &cobra.Command{
	Use:     "registry",
	GroupID: GroupGrade,
	Short:   "Build the GradeBook from the official roster master",
	Long: `Build the Roster and GradeBook workbook from the official roster master.

The master must have class, timetable, time, student_no and name columns.
When a student number appears more than once the last row wins. Each
student's email is taken from their most recent timestamped form submission
and form_submit_count is counted by student number.`,
	Example: `  saiten registry --roster master.xlsx --form responses.xlsx
  saiten registry --roster master.csv --form responses.csv --col-student-no "学籍番号（半角）"`,
	Args: cobra.NoArgs,
	RunE: runRegistry,
}

func init() {
	registryCmd.Flags().StringVar(&registryRoster, "roster", "", "Roster master (.xlsx, .xls or .csv)")
	registryCmd.Flags().StringVar(&registryRosterSheet, "roster-sheet", "", "Sheet of the roster master (default: first)")
	registryCmd.Flags().StringVarP(&registryForm, "form", "f", "", "Form submission log (.xlsx, .xls or .csv)")
	registryCmd.Flags().StringVar(&registrySheet, "sheet", "", "Sheet of the form log (default: first)")
	registryCmd.Flags().StringVarP(&registryOut, "out", "o", "", "Output workbook (default: <roster>_採点台帳.xlsx)")
	registryCmd.Flags().IntVar(&registrySiteTotal, "site-total", 0,
		fmt.Sprintf("Site requirement count for every student (%d-%d; default from config)",
			pipeline.MinSiteTotal, pipeline.MaxSiteTotal))
	registryCmd.Flags().BoolVar(&registryPick, "pick", false, "Review column roles interactively")
	registryCmd.Flags().BoolVar(&registryPreview, "preview", false, "Print the roster and gradebook")
	addColumnFlags(registryCmd, &registryCols)
	_ = registryCmd.MarkFlagRequired("roster")
	_ = registryCmd.MarkFlagRequired("form")
	rootCmd.AddCommand(registryCmd)
}

func runRegistry(cmd *cobra.Command, _ []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	master, err := r.loadTable(registryRoster, registryRosterSheet)
	if err != nil {
		return err
	}
	log, err := r.loadTable(registryForm, registrySheet)
	if err != nil {
		return err
	}

	roles, err := r.resolveRoles(log, registryCols, registryPick,
		columns.RoleTimestamp, columns.RoleEmail, columns.RoleStudentNo)
	if err != nil {
		return err
	}

	res, err := pipeline.RunRegistry(pipeline.RegistryInput{
		Master:    master,
		Log:       log,
		Roles:     roles,
		SiteTotal: registrySiteTotal,
	}, r.cfg)
	if err != nil {
		return err
	}
	r.log(events.TypeBuild, map[string]any{"students": len(res.Rows), "workflow": "registry"})
	r.reportResult(res)

	out := registryOut
	if out == "" {
		out = defaultOutPath(registryRoster)
	}
	if err := res.Write(cmd.Context(), out); err != nil {
		return err
	}
	r.log(events.TypeExport, events.ExportPayload(out, len(res.Rows)))

	if registryPreview {
		printPreview(res)
	}
	fmt.Printf("%s Wrote %s (%d students)\n", style.SuccessPrefix, style.Bold.Render(out), len(res.Rows))
	fmt.Printf("  %s\n", style.Dim.Render(preview.Summary(res.Rows)))
	return nil
}
