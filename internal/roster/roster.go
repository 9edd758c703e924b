// Package roster turns uploaded tables into the canonical student list.
//
// Two sources are supported and they deduplicate in opposite directions:
//
//   - Build reads free-form form responses keyed by email. The first
//     response for an email wins, since later submissions of the same form
//     add nothing to the student's identity.
//   - LoadMaster reads the authoritative registry keyed by student number.
//     The last row for a number wins, since registries are corrected by
//     appending fixes.
package roster

import (
	"sort"

	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

// Entry is one student of a form-derived roster.
type Entry struct {
	Class string
	Name  string
	Email string
}

// Build projects the class, name and email columns of t, drops rows with no
// email, keeps the first row per email key and sorts the result by
// (class, name, email). key is the identity function submissions are
// matched with; nil means textnorm.Identity. Emails are stored as keyed.
func Build(t *table.Table, classCol, nameCol, emailCol string, key func(any) string) []Entry {
	if key == nil {
		key = textnorm.Identity
	}
	seen := make(map[string]bool)
	var out []Entry
	for _, row := range t.Rows {
		email := key(row[emailCol])
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, Entry{
			Class: textnorm.Text(row[classCol]),
			Name:  textnorm.Text(row[nameCol]),
			Email: email,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Email < b.Email
	})
	return out
}

// Table renders a roster as a table with columns class, name, email.
func Table(entries []Entry) *table.Table {
	t := table.New("class", "name", "email")
	for _, e := range entries {
		t.Append(e.Class, e.Name, e.Email)
	}
	return t
}
