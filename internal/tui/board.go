package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/listview"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.board.Columns()
	m.col = clamp(m.col, len(cols))
	m.row = clamp(m.row, len(cols[m.col].Tasks))

	switch {
	case key.Matches(msg, m.keys.Project):
		return m.openPrompt(promptProject, m.board.ProjectID())
	case key.Matches(msg, m.keys.Add):
		if m.board.ProjectID() == "" {
			return m.openPrompt(promptProject, "")
		}
		return m.openPrompt(promptNewBoardTask, "")
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(tabBoard, m.board.Load)
	case key.Matches(msg, m.keys.Left):
		m.col = clamp(m.col-1, len(cols))
		m.row = clamp(m.row, len(cols[m.col].Tasks))
	case key.Matches(msg, m.keys.Right):
		m.col = clamp(m.col+1, len(cols))
		m.row = clamp(m.row, len(cols[m.col].Tasks))
	case key.Matches(msg, m.keys.Up):
		m.row = clamp(m.row-1, len(cols[m.col].Tasks))
	case key.Matches(msg, m.keys.Down):
		m.row = clamp(m.row+1, len(cols[m.col].Tasks))
	case key.Matches(msg, m.keys.MoveLeft):
		return m.moveSelected(cols, -1)
	case key.Matches(msg, m.keys.MoveRight):
		return m.moveSelected(cols, 1)
	}
	return m, nil
}

// moveSelected moves the selected task to the adjacent column in direction
// dir and keeps it selected there.
func (m Model) moveSelected(cols []views.Column, dir int) (tea.Model, tea.Cmd) {
	target := m.col + dir
	if target < 0 || target >= len(cols) || len(cols[m.col].Tasks) == 0 {
		return m, nil
	}
	task := cols[m.col].Tasks[m.row]
	status := cols[target].Status

	m.col, m.row = target, len(cols[target].Tasks)
	return m, m.run(tabBoard, func(ctx context.Context) error {
		return m.board.Move(ctx, task.ID, status, -1)
	})
}

func (m Model) boardView() string {
	if m.board.ProjectID() == "" {
		return MutedStyle.Render(" No project selected. Press p to choose one.")
	}

	var b strings.Builder
	b.WriteString(MutedStyle.Render(" Project " + m.board.ProjectID()))
	b.WriteString("\n")
	if m.board.Status() == listview.Loading {
		b.WriteString(" " + m.spinner.View() + " Loading…\n")
	}
	if msg := m.board.Err(); msg != "" {
		b.WriteString(ErrorStyle.Render(" "+msg) + "\n")
	}

	cols := m.board.Columns()
	col := clamp(m.col, len(cols))
	rendered := make([]string, len(cols))
	for i, c := range cols {
		rendered[i] = m.columnView(c, i == col)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	return b.String()
}

func (m Model) columnView(c views.Column, active bool) string {
	var b strings.Builder
	b.WriteString(ColumnTitleStyle.Render(fmt.Sprintf("%s (%d)", c.Title, len(c.Tasks))))
	b.WriteString("\n")
	if len(c.Tasks) == 0 {
		b.WriteString(MutedStyle.Render("(empty)"))
	}
	row := clamp(m.row, len(c.Tasks))
	for i, t := range c.Tasks {
		line := taskLine(t)
		if active && i == row {
			line = SelectedStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	style := ColumnStyle
	if active {
		style = ActiveColumnStyle
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func taskLine(t service.Task) string {
	title := titleOf(t.Title)
	if t.Priority != "" {
		return fmt.Sprintf("%s [%s]", title, t.Priority)
	}
	return title
}

func titleOf(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "(untitled)"
	}
	return s
}
