// Package pipeline runs the grading workflows end to end: from uploaded
// tables to the Roster and GradeBook sheets.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/config"
	"github.com/kyoshitsu/saiten/internal/roster"
	"github.com/kyoshitsu/saiten/internal/scoring"
	"github.com/kyoshitsu/saiten/internal/sheet"
	"github.com/kyoshitsu/saiten/internal/submission"
	"github.com/kyoshitsu/saiten/internal/table"
)

// Workbook sheet names.
const (
	SheetRoster    = "Roster"
	SheetGradeBook = "GradeBook"
)

// Bounds for the site requirement count override.
const (
	MinSiteTotal = 1
	MaxSiteTotal = 30
)

var (
	// ErrMissingColumn indicates a role the workflow needs was not resolved.
	ErrMissingColumn = errors.New("required column not resolved")

	// ErrSiteTotal indicates a site requirement override out of range.
	ErrSiteTotal = errors.New("site requirement total out of range")
)

// Result is the output of a workflow: the roster sheet, the gradebook rows
// and what reconciliation dropped along the way.
type Result struct {
	Roster         *table.Table
	Rows           []scoring.Row
	IdentityCols   []string
	Counts         []submission.Count
	Stats          submission.Stats
	Unmatched      []string // log identities with no roster row
	SharedKeys     []string // registry student numbers that collide under the identity key
	MissingEmail   int      // registry rows left without an email
	ParseCoercions int      // dirty ledger cells read back as 0
	UnknownStatus  int      // ledger status cells that are not a known verdict
}

// GradeBook renders the gradebook rows as a table.
func (r *Result) GradeBook() *table.Table {
	return scoring.Table(r.Rows, r.IdentityCols)
}

// Sheets returns the workbook sheets in export order.
func (r *Result) Sheets() []sheet.Named {
	return []sheet.Named{
		{Name: SheetRoster, Table: r.Roster},
		{Name: SheetGradeBook, Table: r.GradeBook()},
	}
}

// Write exports the result as a Roster + GradeBook workbook.
func (r *Result) Write(ctx context.Context, path string) error {
	return sheet.WriteWorkbook(ctx, path, r.Sheets()...)
}

// requireRoles fails when any of roles is unresolved in m.
func requireRoles(m columns.RoleMap, roles ...columns.Role) error {
	missing := m.Missing(roles...)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, r := range missing {
		names[i] = fmt.Sprintf("%s (%s)", r, columns.Label[r])
	}
	return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, ", "))
}

// applySiteTotal overrides site_requirements_total on every row. Zero keeps
// the rows as they are.
func applySiteTotal(rows []scoring.Row, total int) error {
	if total == 0 {
		return nil
	}
	if total < MinSiteTotal || total > MaxSiteTotal {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrSiteTotal, total, MinSiteTotal, MaxSiteTotal)
	}
	for i := range rows {
		rows[i].SiteRequirementsTotal = total
	}
	return nil
}

// unmatched lists count identities with no roster key, sorted.
func unmatched(counts []submission.Count, known map[string]bool) []string {
	var out []string
	for _, c := range counts {
		if !known[c.Identity] {
			out = append(out, c.Identity)
		}
	}
	sort.Strings(out)
	return out
}

// FormInput is one combined form-response log and its resolved columns.
type FormInput struct {
	Log   *table.Table
	Roles columns.RoleMap

	// SiteTotal overrides site_requirements_total when non-zero.
	SiteTotal int
}

// RunForm builds the roster from the form log itself, keyed by email, and
// fills form_submit_count from the same log.
func RunForm(in FormInput, cfg *config.Config) (*Result, error) {
	if err := requireRoles(in.Roles, columns.RoleTimestamp, columns.RoleEmail, columns.RoleClass, columns.RoleName); err != nil {
		return nil, err
	}

	key := cfg.IdentityKey()
	entries := roster.Build(in.Log, in.Roles.Class, in.Roles.Name, in.Roles.Email, key)

	rec := submission.New(key)
	counts, stats := rec.CountSubmissions(in.Log, in.Roles.Email, in.Roles.Timestamp, cfg.Attendance.TotalSessions)
	byEmail := submission.CountMap(counts)

	ids := make([]scoring.Identity, len(entries))
	known := make(map[string]bool, len(entries))
	for i, e := range entries {
		ids[i] = scoring.Identity{Class: e.Class, Name: e.Name, Email: e.Email}
		known[key(e.Email)] = true
	}

	rows := scoring.Build(ids, cfg.Config)
	for i := range rows {
		rows[i].FormSubmitCount = byEmail[key(rows[i].Email)]
	}
	if err := applySiteTotal(rows, in.SiteTotal); err != nil {
		return nil, err
	}

	return &Result{
		Roster:       roster.Table(entries),
		Rows:         scoring.Recompute(rows, cfg.Config),
		IdentityCols: scoring.FormIdentityColumns,
		Counts:       counts,
		Stats:        stats,
		Unmatched:    unmatched(counts, known),
	}, nil
}

// RegistryInput pairs the authoritative roster master with a submission
// log keyed by student number.
type RegistryInput struct {
	Master *table.Table
	Log    *table.Table
	Roles  columns.RoleMap

	// SiteTotal overrides site_requirements_total when non-zero.
	SiteTotal int
}

// RunRegistry builds the gradebook from the roster master. Each student's
// email is taken from their most recent submission and form_submit_count is
// counted by student number.
func RunRegistry(in RegistryInput, cfg *config.Config) (*Result, error) {
	if err := requireRoles(in.Roles, columns.RoleTimestamp, columns.RoleEmail, columns.RoleStudentNo); err != nil {
		return nil, err
	}

	entries, err := roster.LoadMaster(in.Master)
	if err != nil {
		return nil, err
	}

	key := cfg.IdentityKey()
	rec := submission.New(key)
	latest := rec.LatestEmails(in.Log, in.Roles.StudentNo, in.Roles.Email, in.Roles.Timestamp)
	entries = roster.FillEmails(entries, latest, key)

	counts, stats := rec.CountSubmissions(in.Log, in.Roles.StudentNo, in.Roles.Timestamp, cfg.Attendance.TotalSessions)
	byNo := submission.CountMap(counts)

	ids := make([]scoring.Identity, len(entries))
	known := make(map[string]bool, len(entries))
	missingEmail := 0
	for i, e := range entries {
		ids[i] = scoring.Identity(e)
		known[key(e.StudentNo)] = true
		if e.Email == "" {
			missingEmail++
		}
	}

	rows := scoring.Build(ids, cfg.Config)
	for i := range rows {
		rows[i].FormSubmitCount = byNo[key(rows[i].StudentNo)]
	}
	if err := applySiteTotal(rows, in.SiteTotal); err != nil {
		return nil, err
	}

	return &Result{
		Roster:       roster.MasterTable(entries, byNo, key),
		Rows:         scoring.Recompute(rows, cfg.Config),
		IdentityCols: scoring.RegistryIdentityColumns,
		Counts:       counts,
		Stats:        stats,
		Unmatched:    unmatched(counts, known),
		SharedKeys:   roster.SharedKeys(entries, key),
		MissingEmail: missingEmail,
	}, nil
}

// RecomputeWorkbook reads an exported workbook after the operator edited
// its inputs, recomputes every derived field and returns the refreshed
// result. The Roster sheet is carried over unchanged when present.
func RecomputeWorkbook(path string, siteTotal int, cfg *config.Config) (*Result, error) {
	book, err := sheet.Load(path, SheetGradeBook)
	if err != nil {
		return nil, fmt.Errorf("reading gradebook: %w", err)
	}

	rows, parseStats := scoring.ParseTable(book, cfg.Config)
	if err := applySiteTotal(rows, siteTotal); err != nil {
		return nil, err
	}

	rosterTable, err := sheet.Load(path, SheetRoster)
	switch {
	case errors.Is(err, sheet.ErrSheetNotFound), errors.Is(err, sheet.ErrEmpty):
		rosterTable = table.New()
	case err != nil:
		return nil, fmt.Errorf("reading roster: %w", err)
	}

	return &Result{
		Roster:         rosterTable,
		Rows:           scoring.Recompute(rows, cfg.Config),
		IdentityCols:   scoring.IdentityColumnsOf(book),
		ParseCoercions: parseStats.Coerced,
		UnknownStatus:  parseStats.UnknownStatus,
	}, nil
}
