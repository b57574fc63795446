// Package tui implements the interactive terminal client.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/apiclient"
	"taskboard/internal/guard"
	"taskboard/internal/listview"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

// Session is the part of the session manager the TUI drives.
type Session interface {
	guard.Source
	Start(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Logout()
}

type tab int

const (
	tabBoard tab = iota
	tabTasks
	tabTeams
	tabNotifications
)

var tabNames = []string{"Board", "Tasks", "Teams", "Notifications"}

type promptKind int

const (
	promptNone promptKind = iota
	promptProject
	promptTaskScope
	promptSearch
	promptNewBoardTask
	promptNewTask
	promptComment
	promptNewTeam
	promptMember
)

var promptLabels = map[promptKind]string{
	promptProject:      "Project id: ",
	promptTaskScope:    "Project id (or team:<id>): ",
	promptSearch:       "Search: ",
	promptNewBoardTask: "New task: ",
	promptNewTask:      "New task: ",
	promptComment:      "Comment: ",
	promptNewTeam:      "Team name: ",
	promptMember:       "User id [role]: ",
}

// Messages

// startedMsg is sent once the stored session has been restored and checked.
type startedMsg struct{ err error }

// loginMsg is sent when a login attempt finishes.
type loginMsg struct{ err error }

// sessionMsg is sent on every session transition.
type sessionMsg struct{}

// doneMsg is sent when a view action finishes.
type doneMsg struct {
	tab tab
	err error
}

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	session Session
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	board *views.Board
	tasks *views.TasksTable
	teams *views.TeamsTable
	notes *views.Notifications

	login     loginForm
	prompt    textinput.Model
	prompting promptKind

	tab    tab
	col    int
	row    int
	cursor map[tab]int
	status string
	// loaded is set once the lists have been requested for the current
	// session.
	loaded bool

	width  int
	height int
}

// New creates the root model. pageSize bounds the paginated tables and
// boardLimit the board.
func New(ctx context.Context, sess Session, svc service.Service, pageSize, boardLimit int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		ctx:     ctx,
		session: sess,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		board:   views.NewBoard(svc, boardLimit),
		tasks:   views.NewTasksTable(svc, pageSize),
		teams:   views.NewTeamsTable(svc, pageSize),
		notes:   views.NewNotifications(svc, pageSize),
		login:   newLoginForm(),
		prompt:  newInput("", ""),
		cursor:  make(map[tab]int),
	}
}

// Init starts the session restore.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

func (m Model) start() tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		return startedMsg{err: sess.Start(ctx)}
	}
}

func (m Model) run(t tab, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{tab: t, err: fn(ctx)}
	}
}

// loadAll requests every list that needs no further input.
func (m Model) loadAll() tea.Cmd {
	return tea.Batch(
		m.run(tabTeams, func(ctx context.Context) error { return m.teams.Load(ctx, 0) }),
		m.run(tabNotifications, func(ctx context.Context) error { return m.notes.Load(ctx, 0) }),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	status := guard.Check(m.session)
	if status == guard.Unauthenticated && m.loaded {
		m.clear()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startedMsg, sessionMsg:
		return m.afterSession()

	case loginMsg:
		if msg.err != nil {
			m.login.reset(apiclient.MessageOr(msg.err, views.MsgLogin))
			return m, nil
		}
		m.login = newLoginForm()
		return m.afterSession()

	case doneMsg:
		if errors.Is(msg.err, listview.ErrStale) {
			return m, nil
		}
		if msg.err != nil {
			m.status = apiclient.MessageOr(msg.err, "Request failed")
		} else {
			m.status = ""
		}
		m.clampCursors()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch status {
		case guard.Loading:
			return m, nil
		case guard.Unauthenticated:
			return m.updateLogin(msg)
		}
		if m.prompting != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) afterSession() (tea.Model, tea.Cmd) {
	if guard.Check(m.session) != guard.Authenticated {
		if m.loaded {
			m.clear()
		}
		return m, nil
	}
	if m.loaded {
		return m, nil
	}
	m.loaded = true
	return m, m.loadAll()
}

// clear drops everything loaded for the session that just ended. Loads
// still in flight are discarded when they return.
func (m *Model) clear() {
	m.board.SetProject(m.ctx, "")
	m.tasks.List().ResetFilter(service.TaskFilter{})
	m.tasks.CloseDetail()
	m.teams.List().Reset()
	m.teams.CloseDetail()
	m.notes.List().ResetFilter(service.NotificationFilter{})

	m.prompting = promptNone
	m.prompt.Blur()
	m.tab = tabBoard
	m.col, m.row = 0, 0
	m.cursor = make(map[tab]int)
	m.status = ""
	m.loaded = false
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd, submit := m.login.update(msg)
	m.login = form
	if !submit {
		return m, cmd
	}
	email, password, _ := form.credentials()
	ctx, sess := m.ctx, m.session
	return m, func() tea.Msg {
		return loginMsg{err: sess.Login(ctx, email, password)}
	}
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tab(len(tabNames))
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		sess := m.session
		return m, func() tea.Msg {
			sess.Logout()
			return sessionMsg{}
		}
	}

	switch m.tab {
	case tabBoard:
		return m.updateBoard(msg)
	case tabTasks:
		return m.updateTasks(msg)
	case tabTeams:
		return m.updateTeams(msg)
	default:
		return m.updateNotifications(msg)
	}
}

func (m Model) openPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	m.prompting = kind
	m.prompt.Prompt = promptLabels[kind]
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	cmd := m.prompt.Focus()
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = promptNone
		m.prompt.Blur()
		return m, nil
	case "enter":
		kind, value := m.prompting, strings.TrimSpace(m.prompt.Value())
		m.prompting = promptNone
		m.prompt.Blur()
		return m.submitPrompt(kind, value)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case promptProject:
		m.col, m.row = 0, 0
		return m, m.run(tabBoard, func(ctx context.Context) error { return m.board.SetProject(ctx, value) })

	case promptNewBoardTask:
		return m, m.run(tabBoard, func(ctx context.Context) error {
			_, err := m.board.Create(ctx, value)
			return err
		})

	case promptTaskScope:
		filter := m.tasks.List().Filter()
		filter.ProjectID, filter.TeamID = value, ""
		if team, ok := strings.CutPrefix(value, "team:"); ok {
			filter.ProjectID, filter.TeamID = "", team
		}
		m.cursor[tabTasks] = 0
		return m, m.run(tabTasks, func(ctx context.Context) error { return m.tasks.SetFilter(ctx, filter) })

	case promptSearch:
		filter := m.tasks.List().Filter()
		filter.Q = value
		m.cursor[tabTasks] = 0
		return m, m.run(tabTasks, func(ctx context.Context) error { return m.tasks.SetFilter(ctx, filter) })

	case promptNewTask:
		return m, m.run(tabTasks, func(ctx context.Context) error {
			_, err := m.tasks.Create(ctx, value)
			return err
		})

	case promptComment:
		return m, m.run(tabTasks, func(ctx context.Context) error { return m.tasks.AddComment(ctx, value) })

	case promptNewTeam:
		return m, m.run(tabTeams, func(ctx context.Context) error {
			_, err := m.teams.Create(ctx, value)
			return err
		})

	case promptMember:
		userID, role, _ := strings.Cut(value, " ")
		return m, m.run(tabTeams, func(ctx context.Context) error {
			return m.teams.AddMember(ctx, userID, strings.TrimSpace(role))
		})
	}
	return m, nil
}

// moveCursor moves the list cursor of t by delta within n rows.
func (m Model) moveCursor(t tab, delta, n int) {
	m.cursor[t] = clamp(m.cursor[t]+delta, n)
}

func (m Model) clampCursors() {
	m.cursor[tabTasks] = clamp(m.cursor[tabTasks], len(m.tasks.List().Items()))
	m.cursor[tabTeams] = clamp(m.cursor[tabTeams], len(m.teams.List().Items()))
	m.cursor[tabNotifications] = clamp(m.cursor[tabNotifications], len(m.notes.List().Items()))
}

func clamp(i, n int) int {
	return max(0, min(i, n-1))
}

// View renders the screen for the current guard status.
func (m Model) View() string {
	switch guard.Check(m.session) {
	case guard.Loading:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.spinner.View() + " Loading…")
	case guard.Unauthenticated:
		return TitleStyle.Render("taskboard") + "\n" + m.login.view()
	}

	var b strings.Builder
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	var bindings []key.Binding
	switch m.tab {
	case tabBoard:
		b.WriteString(m.boardView())
		bindings = m.keys.BoardHelp()
	case tabTasks:
		b.WriteString(m.tasksView())
		bindings = m.keys.TasksHelp()
	case tabTeams:
		b.WriteString(m.teamsView())
		bindings = m.keys.TeamsHelp()
	default:
		b.WriteString(m.notificationsView())
		bindings = m.keys.NotificationsHelp()
	}
	b.WriteString("\n")

	if m.prompting != promptNone {
		b.WriteString("\n" + m.prompt.View() + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render(m.help.ShortHelpView(bindings)))
	return b.String()
}

func (m Model) tabsView() string {
	parts := make([]string, 0, len(tabNames)+1)
	parts = append(parts, TitleStyle.Render("taskboard"))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			parts = append(parts, ActiveTabStyle.Render(name))
		} else {
			parts = append(parts, TabStyle.Render(name))
		}
	}
	if u := m.session.State().User; u != nil {
		parts = append(parts, MutedStyle.Render(u.Email))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
