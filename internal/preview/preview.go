// Package preview renders roster and gradebook summaries for the terminal.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/scoring"
	"github.com/kyoshitsu/saiten/internal/style"
	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(style.ColorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(style.ColorMuted)
)

func render(headers []string, rows [][]string) string {
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// truncated appends a "... N more" line when rows were cut at limit.
func truncated(out string, total, limit int) string {
	if limit > 0 && total > limit {
		out += "\n" + style.Dim.Render(fmt.Sprintf("... %d more", total-limit))
	}
	return out
}

// Table renders up to limit rows of t. A limit <= 0 renders every row.
func Table(t *table.Table, limit int) string {
	n := t.Len()
	if limit > 0 && n > limit {
		n = limit
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rec := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = textnorm.Text(t.Rows[i][c])
		}
		rows[i] = rec
	}
	return truncated(render(t.Columns, rows), t.Len(), limit)
}

// GradeBook renders the identity and score summary of each row.
func GradeBook(rows []scoring.Row, limit int) string {
	headers := []string{"name", "email", "出席", "学習", "合計", "評価", "判定"}
	n := len(rows)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([][]string, n)
	for i, r := range rows[:n] {
		name := r.Name
		if name == "" {
			name = r.StudentNo
		}
		out[i] = []string{
			name,
			r.Email,
			fmt.Sprintf("%.1f", r.AttendancePoints30),
			fmt.Sprintf("%.1f", r.LearningPoints70),
			fmt.Sprintf("%.1f", r.Total100),
			r.Grade,
			style.Judgement(r.FinalJudgement,
				r.FinalJudgement == scoring.JudgementPass,
				r.AttendanceGate == scoring.GateNG),
		}
	}
	return truncated(render(headers, out), len(rows), limit)
}

// Summary tallies grades and judgements, e.g.
// "S 2 / A 5 / B 3 / C 1 / D 0 | 可 10 / 不可 0 / 不可(出席不足) 1".
func Summary(rows []scoring.Row) string {
	grades := map[string]int{}
	judgements := map[string]int{}
	for _, r := range rows {
		grades[r.Grade]++
		judgements[r.FinalJudgement]++
	}

	var g []string
	for _, letter := range []string{scoring.GradeS, scoring.GradeA, scoring.GradeB, scoring.GradeC, scoring.GradeD} {
		g = append(g, fmt.Sprintf("%s %d", letter, grades[letter]))
	}
	var j []string
	for _, label := range []string{scoring.JudgementPass, scoring.JudgementFail, scoring.JudgementFailAttendance} {
		j = append(j, fmt.Sprintf("%s %d", label, judgements[label]))
	}
	return strings.Join(g, " / ") + " | " + strings.Join(j, " / ")
}

// Roles renders the resolved column for each role. Unresolved roles are
// flagged so the operator knows to pick them by hand.
func Roles(m columns.RoleMap) string {
	rows := make([][]string, 0, len(columns.Roles)+1)
	for _, r := range columns.Roles {
		col := m.Get(r)
		if col == "" {
			col = style.Warning.Render("(未検出)")
		}
		rows = append(rows, []string{columns.Label[r], col})
	}
	quiz := style.Dim.Render("(なし)")
	if len(m.QuizCols) > 0 {
		quiz = strings.Join(m.QuizCols, ", ")
	}
	rows = append(rows, []string{"小テスト列", quiz})
	return render([]string{"役割", "列"}, rows)
}
