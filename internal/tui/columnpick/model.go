// Package columnpick is the interactive column picker shown when hint
// matching leaves a role unresolved or the operator wants to override it.
package columnpick

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyoshitsu/saiten/internal/columns"
)

// ErrCanceled is returned when the operator quits without confirming.
var ErrCanceled = errors.New("column selection canceled")

// Model is the bubbletea model for the column picker.
type Model struct {
	columns  []string
	roles    []columns.Role
	required map[columns.Role]bool
	picked   columns.RoleMap

	roleCursor int
	colCursor  int
	choosing   bool // column list open for the role under roleCursor
	message    string

	confirmed bool
	canceled  bool

	// UI state
	keys     KeyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
}

// New creates a picker over cols, starting from the resolved roles in
// initial. Confirmation is refused until every required role is set.
func New(cols []string, initial columns.RoleMap, required ...columns.Role) Model {
	req := make(map[columns.Role]bool, len(required))
	for _, r := range required {
		req[r] = true
	}
	return Model{
		columns:  cols,
		roles:    columns.Roles,
		required: req,
		picked:   initial,
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Result returns the selection and whether the operator confirmed it.
func (m Model) Result() (columns.RoleMap, bool) {
	return m.picked, m.confirmed
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.message = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.canceled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil

		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil

		case key.Matches(msg, m.keys.Top):
			m.setCursor(0)
			return m, nil

		case key.Matches(msg, m.keys.Bottom):
			m.setCursor(m.maxCursor())
			return m, nil

		case key.Matches(msg, m.keys.Select):
			m.selectCurrent()
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.choosing = false
			return m, nil

		case key.Matches(msg, m.keys.Clear):
			if !m.choosing {
				m.picked.Set(m.currentRole(), "")
			}
			return m, nil

		case key.Matches(msg, m.keys.Confirm):
			if missing := m.missing(); len(missing) > 0 {
				m.message = fmt.Sprintf("未設定: %s", columns.Label[missing[0]])
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) currentRole() columns.Role {
	return m.roles[m.roleCursor]
}

// maxCursor returns the maximum valid cursor position for the open list.
func (m Model) maxCursor() int {
	if m.choosing {
		return max(0, len(m.columns)-1)
	}
	return len(m.roles) - 1
}

func (m *Model) setCursor(n int) {
	if m.choosing {
		m.colCursor = n
	} else {
		m.roleCursor = n
	}
}

func (m *Model) move(delta int) {
	cur := m.roleCursor
	if m.choosing {
		cur = m.colCursor
	}
	cur += delta
	if cur < 0 {
		cur = 0
	}
	if top := m.maxCursor(); cur > top {
		cur = top
	}
	m.setCursor(cur)
}

// selectCurrent opens the column list for the role under the cursor, or
// assigns the column under the cursor when the list is already open.
func (m *Model) selectCurrent() {
	if !m.choosing {
		if len(m.columns) == 0 {
			return
		}
		m.choosing = true
		m.colCursor = 0
		current := m.picked.Get(m.currentRole())
		for i, c := range m.columns {
			if c == current {
				m.colCursor = i
				break
			}
		}
		return
	}
	m.picked.Set(m.currentRole(), m.columns[m.colCursor])
	m.choosing = false
	if m.roleCursor < len(m.roles)-1 {
		m.roleCursor++
	}
}

func (m Model) missing() []columns.Role {
	var out []columns.Role
	for _, r := range m.roles {
		if m.required[r] && m.picked.Get(r) == "" {
			out = append(out, r)
		}
	}
	return out
}

// Run shows the picker on the terminal and returns the confirmed
// selection.
func Run(cols []string, initial columns.RoleMap, required ...columns.Role) (columns.RoleMap, error) {
	p := tea.NewProgram(New(cols, initial, required...), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return initial, fmt.Errorf("running column picker: %w", err)
	}
	picked, ok := final.(Model).Result()
	if !ok {
		return initial, ErrCanceled
	}
	return picked, nil
}
