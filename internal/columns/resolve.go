// Package columns guesses which uploaded column plays which semantic role.
//
// Form builders rename and decorate headers unpredictably, so matching is a
// permissive case-insensitive substring search. A miss is not an error: it
// resolves to the empty string and the operator picks the column by hand.
package columns

import (
	"strings"

	"github.com/kyoshitsu/saiten/internal/textnorm"
)

// Role names a semantic column.
type Role string

// Single-column roles, in the order they are presented to the operator.
const (
	RoleTimestamp Role = "timestamp"
	RoleEmail     Role = "email"
	RoleClass     Role = "class"
	RoleName      Role = "name"
	RoleStudentNo Role = "student_no"
)

// Roles lists every single-column role.
var Roles = []Role{RoleTimestamp, RoleEmail, RoleClass, RoleName, RoleStudentNo}

// Label is the operator-facing caption for each role.
var Label = map[Role]string{
	RoleTimestamp: "タイムスタンプ列",
	RoleEmail:     "メールアドレス列",
	RoleClass:     "Class列",
	RoleName:      "Name列",
	RoleStudentNo: "学籍番号列",
}

// Hints holds the configured substring hint per role.
type Hints struct {
	Timestamp string   `toml:"timestamp" yaml:"timestamp"`
	Email     string   `toml:"email" yaml:"email"`
	Class     string   `toml:"class" yaml:"class"`
	Name      string   `toml:"name" yaml:"name"`
	StudentNo string   `toml:"student_no" yaml:"student_no"`
	QuizCols  []string `toml:"quiz_cols" yaml:"quiz_cols"`
}

// Hint returns the hint configured for a role.
func (h Hints) Hint(r Role) string {
	switch r {
	case RoleTimestamp:
		return h.Timestamp
	case RoleEmail:
		return h.Email
	case RoleClass:
		return h.Class
	case RoleName:
		return h.Name
	case RoleStudentNo:
		return h.StudentNo
	}
	return ""
}

// RoleMap is the resolved column per role for one table. An empty value
// means the role was not found.
type RoleMap struct {
	Timestamp string
	Email     string
	Class     string
	Name      string
	StudentNo string
	QuizCols  []string
}

// Get returns the column resolved for a role.
func (m RoleMap) Get(r Role) string {
	switch r {
	case RoleTimestamp:
		return m.Timestamp
	case RoleEmail:
		return m.Email
	case RoleClass:
		return m.Class
	case RoleName:
		return m.Name
	case RoleStudentNo:
		return m.StudentNo
	}
	return ""
}

// Set overrides the column for a role. Overrides are how the operator
// corrects a wrong or missing guess.
func (m *RoleMap) Set(r Role, column string) {
	switch r {
	case RoleTimestamp:
		m.Timestamp = column
	case RoleEmail:
		m.Email = column
	case RoleClass:
		m.Class = column
	case RoleName:
		m.Name = column
	case RoleStudentNo:
		m.StudentNo = column
	}
}

// Missing lists the given roles that resolved to nothing.
func (m RoleMap) Missing(roles ...Role) []Role {
	var out []Role
	for _, r := range roles {
		if m.Get(r) == "" {
			out = append(out, r)
		}
	}
	return out
}

// FindByHint returns the first column, in table order, whose lower-cased
// name contains the lower-cased hint. It returns "" for a blank hint or
// when nothing matches.
//
// Example: hint "Class" matches "Class 記入例）2-1".
func FindByHint(cols []string, hint string) string {
	h := textnorm.Lower(strings.TrimSpace(hint))
	if h == "" {
		return ""
	}
	for _, c := range cols {
		if strings.Contains(textnorm.Lower(c), h) {
			return c
		}
	}
	return ""
}

// Resolve maps every configured hint to a column of cols. Quiz hints are
// searched independently; unmatched quiz hints are dropped and the matched
// columns keep hint order.
func Resolve(cols []string, hints Hints) RoleMap {
	var m RoleMap
	for _, r := range Roles {
		m.Set(r, FindByHint(cols, hints.Hint(r)))
	}
	for _, qh := range hints.QuizCols {
		if col := FindByHint(cols, qh); col != "" {
			m.QuizCols = append(m.QuizCols, col)
		}
	}
	return m
}
