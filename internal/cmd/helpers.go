package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/config"
	"github.com/kyoshitsu/saiten/internal/events"
	"github.com/kyoshitsu/saiten/internal/pipeline"
	"github.com/kyoshitsu/saiten/internal/preview"
	"github.com/kyoshitsu/saiten/internal/sheet"
	"github.com/kyoshitsu/saiten/internal/style"
	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
	"github.com/kyoshitsu/saiten/internal/tui/columnpick"
)

// previewRows caps the rows printed by --preview.
const previewRows = 20

// run bundles the state shared by one command invocation.
type run struct {
	cfg    *config.Config
	events *events.Logger
}

func newRun() (*run, error) {
	cfg, err := config.Load(configPath, columnsPath)
	if err != nil {
		return nil, err
	}
	return &run{
		cfg:    cfg,
		events: events.New(config.ResolvePath(eventsPath, config.EnvEvents)),
	}, nil
}

// log records an event. Audit failures are reported but never fail the
// command.
func (r *run) log(eventType string, payload map[string]any) {
	if err := r.events.Log(eventType, payload); err != nil {
		style.PrintWarning("audit log: %v", err)
	}
}

// warn prints a warning and records it in the audit trail. The message
// must not carry student data; use warnIdentities for that.
func (r *run) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	style.PrintWarning("%s", msg)
	r.log(events.TypeWarning, events.WarningPayload(msg, 0))
}

// warnIdentities prints summary followed by the identities on stderr. The
// audit trail only gets the summary and how many identities there were.
func (r *run) warnIdentities(summary string, ids []string) {
	style.PrintWarning("%s: %s", summary, strings.Join(ids, ", "))
	r.log(events.TypeWarning, events.WarningPayload(summary, len(ids)))
}

// loadTable reads one sheet of path. When a workbook has several sheets and
// none was named, the first is used and the others are listed.
func (r *run) loadTable(path, sheetName string) (*table.Table, error) {
	if sheetName == "" {
		names, err := sheet.SheetNames(path)
		if err != nil {
			return nil, err
		}
		if len(names) > 1 {
			fmt.Fprintf(os.Stderr, "%s %s: using sheet %s %s\n", style.ArrowPrefix, filepath.Base(path),
				style.Bold.Render(names[0]), style.Dim.Render("(--sheet: "+strings.Join(names, ", ")+")"))
		}
	}

	t, err := sheet.Load(path, sheetName)
	if err != nil {
		return nil, err
	}
	r.log(events.TypeLoad, events.LoadPayload(path, sheetName, t.Len(), t.Columns))
	return t, nil
}

// colOverrides are the --col-* flags.
type colOverrides struct {
	timestamp string
	email     string
	class     string
	name      string
	studentNo string
}

func addColumnFlags(cmd *cobra.Command, o *colOverrides) {
	cmd.Flags().StringVar(&o.timestamp, "col-timestamp", "", "Use this column as the timestamp")
	cmd.Flags().StringVar(&o.email, "col-email", "", "Use this column as the email")
	cmd.Flags().StringVar(&o.class, "col-class", "", "Use this column as the class")
	cmd.Flags().StringVar(&o.name, "col-name", "", "Use this column as the name")
	cmd.Flags().StringVar(&o.studentNo, "col-student-no", "", "Use this column as the student number")
}

// apply overrides resolved roles. Overrides are normalized like headers
// and must name an existing column.
func (o colOverrides) apply(m *columns.RoleMap, cols []string) (bool, error) {
	changed := false
	for _, pair := range []struct {
		role  columns.Role
		value string
	}{
		{columns.RoleTimestamp, o.timestamp},
		{columns.RoleEmail, o.email},
		{columns.RoleClass, o.class},
		{columns.RoleName, o.name},
		{columns.RoleStudentNo, o.studentNo},
	} {
		if pair.value == "" {
			continue
		}
		col := textnorm.Text(pair.value)
		if !contains(cols, col) {
			return false, fmt.Errorf("--col-%s: no column %q (have: %s)",
				strings.ReplaceAll(string(pair.role), "_", "-"), col, strings.Join(cols, ", "))
		}
		m.Set(pair.role, col)
		changed = true
	}
	return changed, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// resolveRoles runs hint matching, applies --col-* overrides and, when
// asked, lets the operator confirm the result in the picker.
func (r *run) resolveRoles(t *table.Table, o colOverrides, pick bool, required ...columns.Role) (columns.RoleMap, error) {
	roles := columns.Resolve(t.Columns, r.cfg.Columns)
	r.log(events.TypeResolve, events.ResolvePayload(roles))

	changed, err := o.apply(&roles, t.Columns)
	if err != nil {
		return roles, err
	}

	if pick {
		if !isInteractive() {
			return roles, fmt.Errorf("--pick needs an interactive terminal")
		}
		roles, err = columnpick.Run(t.Columns, roles, required...)
		if err != nil {
			return roles, err
		}
		changed = true
	}
	if changed {
		r.log(events.TypeOverride, events.ResolvePayload(roles))
	}

	if missing := roles.Missing(required...); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, m := range missing {
			labels[i] = columns.Label[m]
		}
		return roles, fmt.Errorf("could not find %s; pass --col-* or --pick\n\n%s",
			strings.Join(labels, ", "), preview.Roles(roles))
	}
	return roles, nil
}

// reportResult prints what reconciliation dropped or could not match.
func (r *run) reportResult(res *pipeline.Result) {
	s := res.Stats
	r.log(events.TypeReconcile, events.ReconcilePayload(len(res.Counts), s))

	if s.NoIdentity > 0 {
		r.warn("%d submission(s) without an identity were ignored", s.NoIdentity)
	}
	if s.BadTimestamp > 0 {
		r.warn("%d submission(s) with a missing or unreadable timestamp were ignored", s.BadTimestamp)
	}
	if s.Clipped > 0 {
		r.warn("%d student(s) submitted on more days than the %d sessions; capped",
			s.Clipped, r.cfg.Attendance.TotalSessions)
	}
	if n := len(res.Unmatched); n > 0 {
		r.warnIdentities(fmt.Sprintf("%d identity(ies) in the log are not on the roster", n), res.Unmatched)
	}
	if n := len(res.SharedKeys); n > 0 {
		r.warnIdentities(fmt.Sprintf("%d student number(s) share an identity key and get the same email and count", n), res.SharedKeys)
	}
	if res.MissingEmail > 0 {
		r.warn("%d student(s) have no email (no timestamped submission)", res.MissingEmail)
	}
	if res.ParseCoercions > 0 {
		r.warn("%d non-numeric input cell(s) were read as 0", res.ParseCoercions)
	}
	if res.UnknownStatus > 0 {
		r.warn("%d unrecognized report/final status cell(s) scored 0", res.UnknownStatus)
	}
	if s.SameDay > 0 {
		fmt.Fprintf(os.Stderr, "%s\n", style.Dim.Render(
			fmt.Sprintf("  %d same-day resubmission(s) counted once", s.SameDay)))
	}
}

// printPreview prints the roster, gradebook and grade tally.
func printPreview(res *pipeline.Result) {
	fmt.Println(style.Bold.Render(pipeline.SheetRoster))
	fmt.Println(preview.Table(res.Roster, previewRows))
	fmt.Println()
	fmt.Println(style.Bold.Render(pipeline.SheetGradeBook))
	fmt.Println(preview.GradeBook(res.Rows, previewRows))
	fmt.Println()
}

// defaultOutPath derives the workbook path from the input file:
// dir/form.xlsx -> dir/form_採点台帳.xlsx.
func defaultOutPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	return filepath.Join(filepath.Dir(input), stem+"_採点台帳.xlsx")
}
