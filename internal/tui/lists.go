package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/listview"
	"taskboard/internal/output"
	"taskboard/internal/service"
)

func (m Model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.tasks.List().Items()
	_, detail := m.tasks.Selected()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(tabTasks, -1, len(items))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(tabTasks, 1, len(items))
	case key.Matches(msg, m.keys.NextPage):
		m.cursor[tabTasks] = 0
		return m, m.run(tabTasks, m.tasks.Next)
	case key.Matches(msg, m.keys.PrevPage):
		m.cursor[tabTasks] = 0
		return m, m.run(tabTasks, m.tasks.Prev)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(tabTasks, m.tasks.Reload)
	case key.Matches(msg, m.keys.Filter):
		f := m.tasks.List().Filter()
		scope := f.ProjectID
		if f.TeamID != "" {
			scope = "team:" + f.TeamID
		}
		return m.openPrompt(promptTaskScope, scope)
	case key.Matches(msg, m.keys.Search):
		return m.openPrompt(promptSearch, m.tasks.List().Filter().Q)
	case key.Matches(msg, m.keys.Add):
		if m.tasks.List().Filter().ProjectID == "" {
			return m.openPrompt(promptTaskScope, "")
		}
		return m.openPrompt(promptNewTask, "")
	case key.Matches(msg, m.keys.Status):
		if detail {
			return m, m.cycleSelectedStatus()
		}
		filter := m.tasks.List().Filter()
		filter.Status = nextStatus(filter.Status, true)
		m.cursor[tabTasks] = 0
		return m, m.run(tabTasks, func(ctx context.Context) error { return m.tasks.SetFilter(ctx, filter) })
	case key.Matches(msg, m.keys.Comment):
		if detail {
			return m.openPrompt(promptComment, "")
		}
	case key.Matches(msg, m.keys.Enter):
		if len(items) == 0 {
			return m, nil
		}
		task := items[clamp(m.cursor[tabTasks], len(items))]
		return m, m.run(tabTasks, func(ctx context.Context) error { return m.tasks.Select(ctx, task) })
	case key.Matches(msg, m.keys.Escape):
		m.tasks.CloseDetail()
	}
	return m, nil
}

func (m Model) cycleSelectedStatus() tea.Cmd {
	task, _ := m.tasks.Selected()
	status := nextStatus(task.Status, false)
	return m.run(tabTasks, func(ctx context.Context) error {
		_, err := m.tasks.UpdateSelected(ctx, service.TaskPatch{Status: &status})
		return err
	})
}

// nextStatus returns the status after s. With blank set, "" is part of the
// cycle and means no status filter.
func nextStatus(s string, blank bool) string {
	cycle := service.Statuses
	if blank {
		cycle = append([]string{""}, cycle...)
	}
	i := slices.Index(cycle, s)
	return cycle[(i+1)%len(cycle)]
}

func (m Model) tasksView() string {
	f := m.tasks.List().Filter()
	if !f.Scoped() {
		return MutedStyle.Render(" No project selected. Press f to choose a project or team.")
	}

	var b strings.Builder
	b.WriteString(MutedStyle.Render(" " + describeFilter(f)))
	b.WriteString("\n")
	b.WriteString(m.listState(m.tasks.List().Status(), m.tasks.List().Err()))

	items := m.tasks.List().Items()
	if len(items) == 0 && m.tasks.List().Status() == listview.Loaded {
		b.WriteString(MutedStyle.Render(" No tasks.") + "\n")
	}
	cur := clamp(m.cursor[tabTasks], len(items))
	offset := m.tasks.List().Offset()
	for i, t := range items {
		line := fmt.Sprintf("%4d  %-11s  %-6s  %s", offset+i+1, t.Status, t.Priority, titleOf(t.Title))
		b.WriteString(highlight(line, i == cur) + "\n")
	}
	b.WriteString(MutedStyle.Render(" "+output.PageSummary(m.tasks.List().Meta())) + "\n")

	if task, ok := m.tasks.Selected(); ok {
		b.WriteString(m.taskDetailView(task))
	}
	return b.String()
}

func describeFilter(f service.TaskFilter) string {
	parts := []string{}
	if f.ProjectID != "" {
		parts = append(parts, "project "+f.ProjectID)
	}
	if f.TeamID != "" {
		parts = append(parts, "team "+f.TeamID)
	}
	if f.Status != "" {
		parts = append(parts, "status "+f.Status)
	}
	if f.Priority != "" {
		parts = append(parts, "priority "+f.Priority)
	}
	if f.Q != "" {
		parts = append(parts, fmt.Sprintf("matching %q", f.Q))
	}
	return strings.Join(parts, " · ")
}

func (m Model) taskDetailView(task service.Task) string {
	var b strings.Builder
	b.WriteString(ColumnTitleStyle.Render(titleOf(task.Title)) + "\n")
	b.WriteString(fmt.Sprintf("status %s · priority %s", orDash(task.Status), orDash(task.Priority)))
	if task.DueDate != "" {
		b.WriteString(" · due " + task.DueDate)
	}
	b.WriteString("\n")
	if d := strings.TrimSpace(task.Description); d != "" {
		b.WriteString(d + "\n")
	}
	comments := m.tasks.Comments()
	b.WriteString(MutedStyle.Render(fmt.Sprintf("Comments (%d)", len(comments))) + "\n")
	for _, c := range comments {
		b.WriteString("  - " + strings.ReplaceAll(c.Body, "\n", " ") + "\n")
	}
	if msg := m.tasks.DetailErr(); msg != "" {
		b.WriteString(ErrorStyle.Render(msg) + "\n")
	}
	b.WriteString(MutedStyle.Render("s status · c comment · esc close"))
	return DetailStyle.Render(b.String())
}

func (m Model) updateTeams(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.teams.List().Items()
	_, detail := m.teams.Selected()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(tabTeams, -1, len(items))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(tabTeams, 1, len(items))
	case key.Matches(msg, m.keys.NextPage):
		m.cursor[tabTeams] = 0
		return m, m.run(tabTeams, m.teams.List().Next)
	case key.Matches(msg, m.keys.PrevPage):
		m.cursor[tabTeams] = 0
		return m, m.run(tabTeams, m.teams.List().Prev)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(tabTeams, m.teams.List().Reload)
	case key.Matches(msg, m.keys.Add):
		return m.openPrompt(promptNewTeam, "")
	case key.Matches(msg, m.keys.Member):
		if detail {
			return m.openPrompt(promptMember, "")
		}
	case key.Matches(msg, m.keys.Enter):
		if len(items) == 0 {
			return m, nil
		}
		team := items[clamp(m.cursor[tabTeams], len(items))]
		return m, m.run(tabTeams, func(ctx context.Context) error { return m.teams.Select(ctx, team.ID) })
	case key.Matches(msg, m.keys.Escape):
		m.teams.CloseDetail()
	}
	return m, nil
}

func (m Model) teamsView() string {
	var b strings.Builder
	list := m.teams.List()
	b.WriteString(m.listState(list.Status(), list.Err()))

	items := list.Items()
	if len(items) == 0 && list.Status() == listview.Loaded {
		b.WriteString(MutedStyle.Render(" No teams.") + "\n")
	}
	cur := clamp(m.cursor[tabTeams], len(items))
	for i, t := range items {
		line := fmt.Sprintf("%4d  %s", list.Offset()+i+1, t.Name)
		b.WriteString(highlight(line, i == cur) + "\n")
	}
	b.WriteString(MutedStyle.Render(" "+output.PageSummary(list.Meta())) + "\n")

	if team, ok := m.teams.Selected(); ok {
		var d strings.Builder
		d.WriteString(ColumnTitleStyle.Render(team.Name) + "\n")
		d.WriteString(MutedStyle.Render(fmt.Sprintf("Members (%d)", len(team.Members))) + "\n")
		for _, mem := range team.Members {
			who := mem.UserID
			if mem.Email != "" {
				who = mem.Email
			}
			d.WriteString(fmt.Sprintf("  - %s [%s]\n", who, orDash(mem.RoleInTeam)))
		}
		if msg := m.teams.DetailErr(); msg != "" {
			d.WriteString(ErrorStyle.Render(msg) + "\n")
		}
		d.WriteString(MutedStyle.Render("m add member · esc close"))
		b.WriteString(DetailStyle.Render(d.String()))
	} else if msg := m.teams.DetailErr(); msg != "" {
		b.WriteString(ErrorStyle.Render(" "+msg) + "\n")
	}
	return b.String()
}

func (m Model) updateNotifications(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.notes.List().Items()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(tabNotifications, -1, len(items))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(tabNotifications, 1, len(items))
	case key.Matches(msg, m.keys.NextPage):
		m.cursor[tabNotifications] = 0
		return m, m.run(tabNotifications, m.notes.List().Next)
	case key.Matches(msg, m.keys.PrevPage):
		m.cursor[tabNotifications] = 0
		return m, m.run(tabNotifications, m.notes.List().Prev)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(tabNotifications, m.notes.List().Reload)
	case key.Matches(msg, m.keys.Unread):
		m.cursor[tabNotifications] = 0
		return m, m.run(tabNotifications, m.notes.ToggleUnread)
	}
	return m, nil
}

func (m Model) notificationsView() string {
	var b strings.Builder
	list := m.notes.List()
	filter := "all"
	if m.notes.UnreadOnly() {
		filter = "unread only"
	}
	b.WriteString(MutedStyle.Render(" Showing "+filter) + "\n")
	b.WriteString(m.listState(list.Status(), list.Err()))

	items := list.Items()
	if len(items) == 0 && list.Status() == listview.Loaded {
		b.WriteString(MutedStyle.Render(" No notifications.") + "\n")
	}
	cur := clamp(m.cursor[tabNotifications], len(items))
	for i, n := range items {
		text := strings.ReplaceAll(n.Message, "\n", " ")
		if n.Type != "" {
			text = "[" + n.Type + "] " + text
		}
		line := fmt.Sprintf("%4d  %s", list.Offset()+i+1, text)
		if !n.IsRead && i != cur {
			line = UnreadStyle.Render(line)
		}
		b.WriteString(highlight(line, i == cur) + "\n")
	}
	b.WriteString(MutedStyle.Render(" "+output.PageSummary(list.Meta())) + "\n")
	return b.String()
}

func (m Model) listState(status listview.Status, errMsg string) string {
	var b strings.Builder
	if status == listview.Loading {
		b.WriteString(" " + m.spinner.View() + " Loading…\n")
	}
	if errMsg != "" {
		b.WriteString(ErrorStyle.Render(" "+errMsg) + "\n")
	}
	return b.String()
}

func highlight(line string, selected bool) string {
	if selected {
		return SelectedStyle.Render("▸" + line)
	}
	return " " + line
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
