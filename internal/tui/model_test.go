package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/apiclient"
	"taskboard/internal/guard"
	"taskboard/internal/listview"
	"taskboard/internal/service"
	"taskboard/internal/session"
	"taskboard/internal/storage"
	"taskboard/internal/testutil"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "s3cret"
)

type harness struct {
	svc   *testutil.FakeService
	store *storage.MemoryStore
	mgr   *session.Manager
}

func newHarness(t *testing.T) (*harness, Model) {
	t.Helper()
	h := &harness{svc: testutil.NewFakeService(), store: storage.NewMemoryStore()}
	h.svc.AddUser(testEmail, testPassword)
	h.mgr = session.New(h.svc, h.store)
	return h, New(context.Background(), h.mgr, h.svc, 5, 50)
}

// signedIn starts the model with a stored, valid token.
func signedIn(t *testing.T) (*harness, Model) {
	t.Helper()
	h, m := newHarness(t)
	if err := h.store.Set(session.TokenKey, h.svc.IssueToken(testEmail)); err != nil {
		t.Fatal(err)
	}
	return h, drive(m, m.start())
}

// drive runs cmd and feeds every resulting message back into the model
// until no command is left.
func drive(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = drive(m, c)
		}
		return m
	default:
		next, cmd := m.Update(msg)
		return drive(next.(Model), cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends each key in turn. Runs of text are sent as a single key
// message.
func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = drive(next.(Model), cmd)
	}
	return m
}

func seedBoard(h *harness) {
	h.svc.AddTask(service.Task{ID: "t1", ProjectID: "p1", Title: "Write docs", Status: service.StatusOpen})
	h.svc.AddTask(service.Task{ID: "t2", ProjectID: "p1", Title: "Fix login", Status: service.StatusOpen})
	h.svc.AddTask(service.Task{ID: "t3", ProjectID: "p1", Title: "Ship it", Status: service.StatusDone})
}

func TestModel_LoadingThenLoginForm(t *testing.T) {
	_, m := newHarness(t)

	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("expected loading placeholder before the session is resolved, got %q", m.View())
	}

	m = drive(m, m.start())

	if !strings.Contains(m.View(), "Sign in") {
		t.Errorf("expected login form, got %q", m.View())
	}
}

func TestModel_Login(t *testing.T) {
	h, m := newHarness(t)
	m = drive(m, m.start())

	m = press(m, testEmail, "enter", testPassword, "enter")

	if guard.Check(h.mgr) != guard.Authenticated {
		t.Fatalf("expected authenticated session, got %v", guard.Check(h.mgr))
	}
	if h.svc.Calls("ListTeams") != 1 || h.svc.Calls("ListNotifications") != 1 {
		t.Errorf("expected lists to load once, got teams=%d notifications=%d",
			h.svc.Calls("ListTeams"), h.svc.Calls("ListNotifications"))
	}
	view := m.View()
	for _, want := range []string{"Board", "Tasks", "Teams", "Notifications", testEmail} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestModel_LoginFailure(t *testing.T) {
	h, m := newHarness(t)
	m = drive(m, m.start())

	m = press(m, testEmail, "enter", "wrong", "enter")

	if guard.Check(h.mgr) != guard.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", guard.Check(h.mgr))
	}
	if !strings.Contains(m.View(), "Invalid credentials") {
		t.Errorf("expected login error in view, got %q", m.View())
	}
	if m.login.password.Value() != "" || m.login.email.Value() != testEmail {
		t.Errorf("expected password cleared and email kept, got %q / %q", m.login.email.Value(), m.login.password.Value())
	}
	if m.login.submitting {
		t.Error("form should accept input again")
	}
}

func TestModel_LoginRequiresBothFields(t *testing.T) {
	h, m := newHarness(t)
	m = drive(m, m.start())

	m = press(m, "enter", "enter")

	if h.svc.Calls("Login") != 0 {
		t.Error("expected no login request")
	}
	if !strings.Contains(m.View(), "Email and password are required") {
		t.Errorf("unexpected view %q", m.View())
	}
}

func TestModel_RestoredSessionLoadsLists(t *testing.T) {
	h, m := signedIn(t)

	if guard.Check(h.mgr) != guard.Authenticated {
		t.Fatalf("expected authenticated, got %v", guard.Check(h.mgr))
	}
	if !m.loaded {
		t.Error("expected lists to be requested")
	}
	if h.svc.Calls("ListTeams") != 1 {
		t.Errorf("expected one teams load, got %d", h.svc.Calls("ListTeams"))
	}
}

func TestModel_UnauthorizedShowsLoginForm(t *testing.T) {
	h, m := signedIn(t)

	h.mgr.Invalidate(h.mgr.State().Token, testutil.Unauthorized("Could not validate credentials"))

	if !strings.Contains(m.View(), "Sign in") {
		t.Fatalf("expected login form after the session was torn down, got %q", m.View())
	}

	next, _ := m.Update(sessionMsg{})
	m = next.(Model)
	m = press(m, testEmail, "enter", testPassword, "enter")

	if h.svc.Calls("ListTeams") != 2 {
		t.Errorf("expected lists to reload after signing in again, got %d", h.svc.Calls("ListTeams"))
	}
}

func TestModel_LogoutClearsPreviousSession(t *testing.T) {
	h, m := signedIn(t)
	seedBoard(h)
	h.svc.AddUser("bob@example.com", "hunter2")

	m = press(m, "p", "p1", "enter", "tab", "f", "p1", "enter", "enter")
	if _, ok := m.tasks.Selected(); !ok {
		t.Fatal("expected a task detail before logging out")
	}

	m = press(m, "ctrl+l")
	if !strings.Contains(m.View(), "Sign in") {
		t.Fatalf("expected login form after logout, got %q", m.View())
	}

	listed := h.svc.Calls("ListTasks")
	m = press(m, "bob@example.com", "enter", "hunter2", "enter")

	if got := m.board.ProjectID(); got != "" {
		t.Errorf("expected board project cleared, got %q", got)
	}
	if got := len(m.board.Tasks()); got != 0 {
		t.Errorf("expected empty board, got %d tasks", got)
	}
	if got := len(m.tasks.List().Items()); got != 0 {
		t.Errorf("expected empty tasks table, got %d", got)
	}
	if _, ok := m.tasks.Selected(); ok {
		t.Error("expected task detail closed")
	}
	if h.svc.Calls("ListTasks") != listed {
		t.Error("expected no task request after signing in again")
	}
	if m.tab != tabBoard || m.col != 0 || m.row != 0 {
		t.Errorf("expected selection reset, got tab=%d col=%d row=%d", m.tab, m.col, m.row)
	}
	if strings.Contains(m.View(), "Write docs") {
		t.Errorf("previous session's tasks still rendered: %q", m.View())
	}
}

func TestModel_BoardMove(t *testing.T) {
	h, m := signedIn(t)
	seedBoard(h)

	m = press(m, "p", "p1", "enter")
	if got := len(m.board.Columns()[0].Tasks); got != 2 {
		t.Fatalf("expected 2 open tasks, got %d", got)
	}

	m = press(m, ">")

	if task, _ := h.svc.Task("t1"); task.Status != service.StatusInProgress {
		t.Errorf("expected t1 in progress, got %q", task.Status)
	}
	cols := m.board.Columns()
	if len(cols[1].Tasks) != 1 || cols[1].Tasks[0].ID != "t1" {
		t.Errorf("expected t1 in the in-progress column, got %+v", cols[1].Tasks)
	}
	if m.col != 1 || m.row != 0 {
		t.Errorf("expected selection to follow the task, got col=%d row=%d", m.col, m.row)
	}

	m = press(m, "<")
	if task, _ := h.svc.Task("t1"); task.Status != service.StatusOpen {
		t.Errorf("expected t1 open again, got %q", task.Status)
	}
}

func TestModel_BoardMoveRollback(t *testing.T) {
	h, m := signedIn(t)
	seedBoard(h)
	m = press(m, "p", "p1", "enter")
	h.svc.UpdateTaskErr = &apiclient.Error{Status: http.StatusInternalServerError}

	m = press(m, "l", "h", ">")

	cols := m.board.Columns()
	if len(cols[0].Tasks) != 2 || cols[0].Tasks[0].ID != "t1" {
		t.Errorf("expected t1 back in the open column, got %+v", cols[0].Tasks)
	}
	if len(cols[1].Tasks) != 0 {
		t.Errorf("expected empty in-progress column, got %+v", cols[1].Tasks)
	}
	if !strings.Contains(m.View(), "Failed to move task") {
		t.Errorf("expected failure message in view")
	}
}

func TestModel_BoardMoveAtEdgeIsNoop(t *testing.T) {
	h, m := signedIn(t)
	seedBoard(h)
	m = press(m, "p", "p1", "enter")

	m = press(m, "<")

	if h.svc.Calls("UpdateTask") != 0 {
		t.Error("expected no request when moving past the first column")
	}
}

func TestModel_TasksDetail(t *testing.T) {
	h, m := signedIn(t)
	seedBoard(h)

	m = press(m, "tab", "f", "p1", "enter")
	if got := len(m.tasks.List().Items()); got != 3 {
		t.Fatalf("expected 3 tasks, got %d", got)
	}

	m = press(m, "j", "enter")
	task, ok := m.tasks.Selected()
	if !ok || task.ID != "t2" {
		t.Fatalf("expected t2 selected, got %+v (%v)", task, ok)
	}
	if !strings.Contains(m.View(), "Comments (0)") {
		t.Errorf("expected detail panel in view")
	}

	m = press(m, "c", "looks good", "enter")
	if comments := m.tasks.Comments(); len(comments) != 1 || comments[0].Body != "looks good" {
		t.Errorf("unexpected comments %+v", comments)
	}

	m = press(m, "s")
	if got, _ := h.svc.Task("t2"); got.Status != service.StatusInProgress {
		t.Errorf("expected status to advance, got %q", got.Status)
	}

	m = press(m, "esc")
	if _, ok := m.tasks.Selected(); ok {
		t.Error("expected detail closed")
	}
	if len(m.tasks.List().Items()) != 3 {
		t.Error("closing the detail must keep the list")
	}
}

func TestModel_TasksPaging(t *testing.T) {
	h, m := signedIn(t)
	for i := 0; i < 7; i++ {
		h.svc.AddTask(service.Task{ProjectID: "p1", Title: "task", Status: service.StatusOpen})
	}

	m = press(m, "tab", "f", "p1", "enter", "n")

	if m.tasks.List().Offset() != 5 || len(m.tasks.List().Items()) != 2 {
		t.Errorf("expected second page, got offset %d with %d items", m.tasks.List().Offset(), len(m.tasks.List().Items()))
	}

	m = press(m, "p")
	if m.tasks.List().Offset() != 0 {
		t.Errorf("expected first page, got offset %d", m.tasks.List().Offset())
	}
}

func TestModel_NotificationsToggleUnread(t *testing.T) {
	h, m := signedIn(t)
	h.svc.AddNotification(service.Notification{Message: "new", IsRead: false})
	h.svc.AddNotification(service.Notification{Message: "old", IsRead: true})

	m = press(m, "tab", "tab", "tab", "u")

	if !h.svc.LastNotificationFilter.UnreadOnly {
		t.Error("expected unread-only request")
	}
	if got := len(m.notes.List().Items()); got != 1 {
		t.Errorf("expected 1 unread notification, got %d", got)
	}
}

func TestModel_TeamsDetailAndMember(t *testing.T) {
	h, m := signedIn(t)
	h.svc.AddTeam("team-a", "Platform")
	m = press(m, "tab", "tab", "r")

	m = press(m, "enter", "m", "u2 owner", "enter")

	team, ok := m.teams.Selected()
	if !ok || len(team.Members) != 1 {
		t.Fatalf("expected selected team with one member, got %+v", team)
	}
	if team.Members[0].UserID != "u2" || team.Members[0].RoleInTeam != "owner" {
		t.Errorf("unexpected member %+v", team.Members[0])
	}
}

func TestModel_StaleResultIgnored(t *testing.T) {
	_, m := signedIn(t)
	m.status = "kept"

	next, cmd := m.Update(doneMsg{tab: tabTasks, err: listview.ErrStale})

	if cmd != nil {
		t.Error("expected no command")
	}
	if next.(Model).status != "kept" {
		t.Error("stale results must not touch the screen")
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		in    string
		blank bool
		want  string
	}{
		{"open", false, "in_progress"},
		{"in_progress", false, "done"},
		{"done", false, "open"},
		{"", false, "open"},
		{"", true, "open"},
		{"done", true, ""},
	}
	for _, tt := range tests {
		if got := nextStatus(tt.in, tt.blank); got != tt.want {
			t.Errorf("nextStatus(%q, %v) = %q, want %q", tt.in, tt.blank, got, tt.want)
		}
	}
}
