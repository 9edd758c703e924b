package columnpick

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/style"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(style.ColorAccent).Padding(0, 1)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(style.ColorMuted).Padding(0, 1)
	focusedStyle  = panelStyle.BorderForeground(style.ColorAccent)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(style.ColorAccent)
	labelStyle    = lipgloss.NewStyle().Width(18)
)

// View renders the model.
func (m Model) View() string {
	if m.confirmed || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("列の割り当て"))
	b.WriteString("\n\n")

	rolesPanel := panelStyle
	colsPanel := panelStyle
	if m.choosing {
		colsPanel = focusedStyle
	} else {
		rolesPanel = focusedStyle
	}

	panels := []string{rolesPanel.Render(m.renderRoles())}
	if m.choosing {
		panels = append(panels, colsPanel.Render(m.renderColumns()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(style.WarningPrefix + " " + m.message + "\n")
	}
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

func (m Model) renderRoles() string {
	lines := make([]string, len(m.roles))
	for i, r := range m.roles {
		label := columns.Label[r]
		if m.required[r] {
			label += " *"
		}
		value := m.picked.Get(r)
		if value == "" {
			value = style.Warning.Render("(未設定)")
		}
		line := labelStyle.Render(label) + " " + value
		if i == m.roleCursor {
			line = selectedStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// renderColumns shows a window of the column list around the cursor.
func (m Model) renderColumns() string {
	window := len(m.columns)
	if m.height > 8 && window > m.height-8 {
		window = m.height - 8
	}
	start := 0
	if m.colCursor >= window {
		start = m.colCursor - window + 1
	}

	current := m.picked.Get(m.currentRole())
	lines := make([]string, 0, window)
	for i := start; i < len(m.columns) && i < start+window; i++ {
		c := m.columns[i]
		marker := "  "
		if c == current {
			marker = style.SuccessPrefix + " "
		}
		if i == m.colCursor {
			lines = append(lines, selectedStyle.Render("▸ "+c))
		} else {
			lines = append(lines, marker+c)
		}
	}
	return strings.Join(lines, "\n")
}
