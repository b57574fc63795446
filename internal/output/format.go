// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskboard/internal/service"
	"taskboard/internal/views"
)

const (
	// ListSeparator is the separator line for sections.
	ListSeparator = "------------"

	// BarWidth is the width of a full rollup bar.
	BarWidth = 20
)

// FormatTask formats a task row of the tasks table.
// Format: "{N:>4}  {STATUS:<11}  {PRIORITY:<6}  {TITLE}  ({ID})\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %-11s  %-6s  %s  (%s)\n",
		num, orDash(task.Status), orDash(task.Priority), normalizeTitle(task.Title), task.ID)
}

// FormatTasks formats a page of tasks followed by its pagination summary.
func FormatTasks(w io.Writer, page service.Page[service.Task]) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No tasks.")
	}
	for i, t := range page.Items {
		FormatTask(w, page.Meta.Offset+i+1, t)
	}
	fmt.Fprintln(w, PageSummary(page.Meta))
}

// FormatSectionHeader formats a section header.
func FormatSectionHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatBoard formats the board columns in order.
// Format per task: "    {N:>4}  {TITLE}  ({ID})\n"
func FormatBoard(w io.Writer, columns []views.Column) {
	for _, col := range columns {
		FormatSectionHeader(w, fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)))
		if len(col.Tasks) == 0 {
			fmt.Fprintln(w, "    (empty)")
		}
		for i, t := range col.Tasks {
			fmt.Fprintf(w, "    %4d  %s  (%s)\n", i+1, normalizeTitle(t.Title), t.ID)
		}
	}
}

// FormatTaskDetail formats one task and its comments.
func FormatTaskDetail(w io.Writer, task service.Task, comments []service.Comment) {
	field(w, "ID", task.ID)
	field(w, "Title", normalizeTitle(task.Title))
	field(w, "Status", orDash(task.Status))
	field(w, "Priority", orDash(task.Priority))
	optionalField(w, "Due", task.DueDate)
	optionalField(w, "Project", task.ProjectID)
	optionalField(w, "Team", task.TeamID)
	if len(task.AssigneeUserIDs) > 0 {
		field(w, "Assignees", strings.Join(task.AssigneeUserIDs, ", "))
	}
	optionalField(w, "Description", flatten(task.Description))

	FormatSectionHeader(w, fmt.Sprintf("Comments (%d)", len(comments)))
	for _, c := range comments {
		fmt.Fprintf(w, "  - %s\n", flatten(c.Body))
	}
}

// FormatTeams formats a page of teams followed by its pagination summary.
func FormatTeams(w io.Writer, page service.Page[service.Team]) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No teams.")
	}
	for i, t := range page.Items {
		fmt.Fprintf(w, "%4d  %s  (%s)\n", page.Meta.Offset+i+1, normalizeTitle(t.Name), t.ID)
	}
	fmt.Fprintln(w, PageSummary(page.Meta))
}

// FormatTeamDetail formats a team and its members.
func FormatTeamDetail(w io.Writer, team service.TeamDetail) {
	field(w, "ID", team.ID)
	field(w, "Name", normalizeTitle(team.Name))
	FormatSectionHeader(w, fmt.Sprintf("Members (%d)", len(team.Members)))
	for _, m := range team.Members {
		who := m.UserID
		if m.Email != "" {
			who = m.Email + " (" + m.UserID + ")"
		}
		fmt.Fprintf(w, "  - %s [%s]\n", who, orDash(m.RoleInTeam))
	}
}

// FormatNotifications formats a page of notifications. Unread entries are
// marked with "*".
func FormatNotifications(w io.Writer, page service.Page[service.Notification]) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No notifications.")
	}
	for i, n := range page.Items {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		msg := flatten(n.Message)
		if n.Type != "" {
			msg = "[" + n.Type + "] " + msg
		}
		fmt.Fprintf(w, "%4d %s %s\n", page.Meta.Offset+i+1, mark, msg)
	}
	fmt.Fprintln(w, PageSummary(page.Meta))
}

// FormatRollup formats rollup counters as horizontal bars.
// Format per counter: "{LABEL:<12}{VALUE:>5}  {BAR:<20}  {PCT:>3}%\n"
func FormatRollup(w io.Writer, title string, r service.Rollup) {
	fmt.Fprintln(w, title)
	for _, b := range views.Bars(r) {
		fmt.Fprintf(w, "%-12s%5d  %-*s  %3d%%\n", b.Label, b.Value, BarWidth, Bar(b.Percent), b.Percent)
	}
	optionalField(w, "Updated", r.UpdatedAt)
}

// Bar renders percent as a run of '#' out of BarWidth.
func Bar(percent int) string {
	percent = max(0, min(100, percent))
	return strings.Repeat("#", percent*BarWidth/100)
}

// FormatUser formats the authenticated profile.
func FormatUser(w io.Writer, u service.User) {
	field(w, "Email", u.Email)
	field(w, "ID", u.ID)
	if len(u.Roles) > 0 {
		field(w, "Roles", strings.Join(u.Roles, ", "))
	}
}

// PageSummary returns "0 results" or "<from>–<to> of <total>".
func PageSummary(m service.Meta) string {
	if m.Total == 0 {
		return "0 results"
	}
	to := min(m.Offset+m.Limit, m.Total)
	return fmt.Sprintf("%d–%d of %d", m.Offset+1, to, m.Total)
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-13s%s\n", label+":", value)
}

func optionalField(w io.Writer, label, value string) {
	if strings.TrimSpace(value) != "" {
		field(w, label, value)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
