package roster

import (
	"fmt"
	"strings"

	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

// Registry column names. Source headers are matched after normalization
// and lower-casing.
const (
	ColClass     = "class"
	ColTimetable = "timetable"
	ColTime      = "time"
	ColStudentNo = "student_no"
	ColName      = "name"
	ColEmail     = "email"

	ColFormSubmitCount = "form_submit_count"
)

// RequiredMasterColumns must all be present in a registry table.
var RequiredMasterColumns = []string{ColClass, ColTimetable, ColTime, ColStudentNo, ColName}

// SchemaError reports registry columns that could not be found.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("roster master is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// MasterEntry is one student of the registry. Email is never read from the
// registry; it is filled by submission reconciliation.
type MasterEntry struct {
	Class     string
	Timetable string
	Time      string
	StudentNo string
	Name      string
	Email     string
}

// LoadMaster validates and normalizes a registry table. Rows without a
// student number are dropped and the last row per student number wins; the
// surviving rows keep their input order.
func LoadMaster(t *table.Table) ([]MasterEntry, error) {
	// Map canonical (lower-cased) names back to the source headers.
	source := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		key := textnorm.Lower(textnorm.Text(c))
		if _, dup := source[key]; !dup {
			source[key] = c
		}
	}

	var missing []string
	for _, req := range RequiredMasterColumns {
		if _, ok := source[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var all []MasterEntry
	last := make(map[string]int)
	for _, row := range t.Rows {
		e := MasterEntry{
			Class:     textnorm.Text(row[source[ColClass]]),
			Timetable: textnorm.Text(row[source[ColTimetable]]),
			Time:      textnorm.Text(row[source[ColTime]]),
			StudentNo: textnorm.Text(row[source[ColStudentNo]]),
			Name:      textnorm.Text(row[source[ColName]]),
		}
		if e.StudentNo == "" {
			continue
		}
		last[e.StudentNo] = len(all)
		all = append(all, e)
	}

	out := make([]MasterEntry, 0, len(last))
	for i, e := range all {
		if last[e.StudentNo] == i {
			out = append(out, e)
		}
	}
	return out, nil
}

// FillEmails sets each entry's email from latest, looked up by the entry's
// student number passed through key. Entries without a match keep an empty
// email.
func FillEmails(entries []MasterEntry, latest map[string]string, key func(any) string) []MasterEntry {
	if key == nil {
		key = textnorm.Identity
	}
	out := make([]MasterEntry, len(entries))
	for i, e := range entries {
		e.Email = latest[key(e.StudentNo)]
		out[i] = e
	}
	return out
}

// MasterTable renders registry entries with the email and submission count
// columns appended. Counts are looked up by the entry's student number
// passed through key.
func MasterTable(entries []MasterEntry, counts map[string]int, key func(any) string) *table.Table {
	if key == nil {
		key = textnorm.Identity
	}
	t := table.New(ColClass, ColTimetable, ColTime, ColStudentNo, ColName, ColEmail, ColFormSubmitCount)
	for _, e := range entries {
		t.Append(e.Class, e.Timetable, e.Time, e.StudentNo, e.Name, e.Email, counts[key(e.StudentNo)])
	}
	return t
}

// SharedKeys returns the student numbers whose key collides with another
// entry's ("a001" and "A001" under a case-folding key), in entry order.
// Such entries receive the same email and submission count.
func SharedKeys(entries []MasterEntry, key func(any) string) []string {
	if key == nil {
		key = textnorm.Identity
	}
	n := make(map[string]int, len(entries))
	for _, e := range entries {
		n[key(e.StudentNo)]++
	}
	var out []string
	for _, e := range entries {
		if n[key(e.StudentNo)] > 1 {
			out = append(out, e.StudentNo)
		}
	}
	return out
}
