package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/events"
	"github.com/kyoshitsu/saiten/internal/preview"
	"github.com/kyoshitsu/saiten/internal/style"
)

var (
	columnsForm     string
	columnsSheet    string
	columnsRegistry bool
	columnsCheck    bool
)

var columnsCmd = &cobra.Command{
	Use:     "columns",
	GroupID: GroupInspect,
	Short:   "Show which column each role resolves to",
	Long: `Show which column of a form log each role resolves to.

Matching is a case-insensitive substring search of the configured hints.
Roles the hints miss are flagged; fix them with --col-* on build/registry,
with --pick, or by editing the column hints file.

With --check, nothing is printed and the exit code is 1 when a role the
workflow needs is unresolved.`,
	Args: cobra.NoArgs,
	RunE: runColumns,
}

func init() {
	columnsCmd.Flags().StringVarP(&columnsForm, "form", "f", "", "Form log (.xlsx, .xls or .csv)")
	columnsCmd.Flags().StringVar(&columnsSheet, "sheet", "", "Sheet of the form log (default: first)")
	columnsCmd.Flags().BoolVar(&columnsRegistry, "registry", false, "Check the roles the registry workflow needs")
	columnsCmd.Flags().BoolVar(&columnsCheck, "check", false, "Exit 1 if a required role is unresolved; print nothing")
	_ = columnsCmd.MarkFlagRequired("form")
	rootCmd.AddCommand(columnsCmd)
}

func requiredRoles(registry bool) []columns.Role {
	if registry {
		return []columns.Role{columns.RoleTimestamp, columns.RoleEmail, columns.RoleStudentNo}
	}
	return []columns.Role{columns.RoleTimestamp, columns.RoleEmail, columns.RoleClass, columns.RoleName}
}

func runColumns(_ *cobra.Command, _ []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}
	log, err := r.loadTable(columnsForm, columnsSheet)
	if err != nil {
		return err
	}

	roles := columns.Resolve(log.Columns, r.cfg.Columns)
	r.log(events.TypeResolve, events.ResolvePayload(roles))
	missing := roles.Missing(requiredRoles(columnsRegistry)...)

	if columnsCheck {
		if len(missing) > 0 {
			return NewSilentExit(1)
		}
		return nil
	}

	fmt.Println(preview.Roles(roles))
	fmt.Printf("%s %s\n", style.Dim.Render("columns:"), strings.Join(log.Columns, " | "))
	if len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, m := range missing {
			labels[i] = columns.Label[m]
		}
		fmt.Fprintf(os.Stderr, "%s required but unresolved: %s\n", style.WarningPrefix, strings.Join(labels, ", "))
		return nil
	}
	fmt.Printf("%s all required roles resolved\n", style.SuccessPrefix)
	return nil
}
