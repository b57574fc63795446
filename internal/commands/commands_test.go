package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"strings"
	"testing"

	"taskboard/internal/apiclient"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
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
	env   *commands.Env
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.BaseURLEnv, "")

	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	svc := testutil.NewFakeService()
	store := storage.NewMemoryStore()
	return &harness{
		svc:   svc,
		store: store,
		env: &commands.Env{
			Config:  cfg,
			Session: session.New(svc, store),
			Service: svc,
			In:      strings.NewReader(""),
		},
	}
}

// loggedIn signs the test user in.
func (h *harness) loggedIn(t *testing.T) *harness {
	t.Helper()
	h.svc.AddUser(testEmail, testPassword)
	if err := h.env.Session.Login(context.Background(), testEmail, testPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return h
}

// run parses args the way the dispatcher does for flags given before the
// positional arguments and runs cmd.
func (h *harness) run(t *testing.T, cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), h.env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expectCode(t *testing.T, got, want int, stderr string) {
	t.Helper()
	if got != want {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", want, got, stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.VersionCmd{})

	expectCode(t, code, exitcode.Success, stderr)
	want := "taskboard " + commands.Version + " (api " + config.DefaultBaseURL + ")\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.HelpCmd{})

	expectCode(t, code, exitcode.Success, stderr)
	for _, want := range []string{"Usage:", "taskboard board", "taskboard tui", "--base-url"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestWhoamiCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)

	stdout, stderr, code := h.run(t, &commands.WhoamiCmd{})

	expectCode(t, code, exitcode.Success, stderr)
	if !strings.Contains(stdout, "Email:       "+testEmail+"\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestWhoamiCommand_NotLoggedIn(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.WhoamiCmd{})

	expectCode(t, code, exitcode.AuthError, stderr)
	if stderr != "error: not logged in\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.RegisterCmd{},
		"--email", "grace@example.com", "--password", "pw", "--role", "admin", "--role", "member")

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "Account created. You can now sign in.\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	req := h.svc.LastRegister
	if req.Email != "grace@example.com" || len(req.Roles) != 2 || req.Roles[0] != "admin" {
		t.Errorf("unexpected register request %+v", req)
	}
	if h.env.Session.IsAuthenticated() {
		t.Error("register must not sign in")
	}
}

func TestRegisterCommand_Duplicate(t *testing.T) {
	h := newHarness(t)
	h.svc.AddUser(testEmail, testPassword)

	_, stderr, code := h.run(t, &commands.RegisterCmd{}, "--email", testEmail, "--password", "x")

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: Email already registered\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand_MissingFields(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.RegisterCmd{}, "--email", testEmail)

	expectCode(t, code, exitcode.UserError, stderr)
	if h.svc.Calls("Register") != 0 {
		t.Error("expected no request")
	}
}

func seedTasks(h *harness) {
	h.svc.AddTask(service.Task{ID: "t1", ProjectID: "p1", Title: "Write docs", Status: service.StatusOpen, Priority: service.PriorityHigh})
	h.svc.AddTask(service.Task{ID: "t2", ProjectID: "p1", Title: "Fix login", Status: service.StatusInProgress, Priority: service.PriorityMedium})
	h.svc.AddTask(service.Task{ID: "t3", ProjectID: "p1", Title: "Ship it", Status: service.StatusDone, Priority: service.PriorityLow})
	h.svc.AddTask(service.Task{ID: "t4", ProjectID: "p2", Title: "Elsewhere", Status: service.StatusOpen})
}

func TestTasksCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)

	stdout, stderr, code := h.run(t, &commands.TasksCmd{}, "--project", "p1", "--limit", "2")

	expectCode(t, code, exitcode.Success, stderr)
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 2 rows and a summary, got %q", stdout)
	}
	if !strings.Contains(lines[0], "Write docs  (t1)") || !strings.HasPrefix(lines[0], "   1  open ") {
		t.Errorf("unexpected first row %q", lines[0])
	}
	if lines[2] != "1–2 of 3" {
		t.Errorf("unexpected summary %q", lines[2])
	}
	if h.svc.LastWindow != (service.Window{Limit: 2, Offset: 0}) {
		t.Errorf("unexpected window %+v", h.svc.LastWindow)
	}
}

func TestTasksCommand_FiltersAndOffset(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)

	stdout, stderr, code := h.run(t, &commands.TasksCmd{},
		"--project", " p1 ", "--status", "in_progress", "--q", "login", "--offset", "0")

	expectCode(t, code, exitcode.Success, stderr)
	if !strings.Contains(stdout, "Fix login") || strings.Contains(stdout, "Write docs") {
		t.Errorf("unexpected output %q", stdout)
	}
	want := service.TaskFilter{ProjectID: "p1", Status: "in_progress", Q: "login"}
	if h.svc.LastTaskFilter != want {
		t.Errorf("expected filter %+v, got %+v", want, h.svc.LastTaskFilter)
	}
	if h.svc.LastWindow.Limit != config.DefaultPageSize {
		t.Errorf("expected default page size, got %d", h.svc.LastWindow.Limit)
	}
}

func TestTasksCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		listErr error
		code    int
		stderr  string
	}{
		{
			name:   "no scope",
			args:   nil,
			code:   exitcode.UserError,
			stderr: "error: a project id is required\n",
		},
		{
			name:   "bad status",
			args:   []string{"--project", "p1", "--status", "blocked"},
			code:   exitcode.UserError,
			stderr: "error: invalid status: blocked (want one of: open, in_progress, done)\n",
		},
		{
			name:   "bad priority",
			args:   []string{"--project", "p1", "--priority", "urgent"},
			code:   exitcode.UserError,
			stderr: "error: invalid priority: urgent (want one of: low, medium, high)\n",
		},
		{
			name:    "server error",
			args:    []string{"--project", "p1"},
			listErr: &apiclient.Error{Status: http.StatusInternalServerError, Message: "Request failed (500)"},
			code:    exitcode.BackendError,
			stderr:  "error: Request failed (500)\n",
		},
		{
			name:    "unreachable",
			args:    []string{"--project", "p1"},
			listErr: &apiclient.TransportError{Err: io.ErrUnexpectedEOF},
			code:    exitcode.BackendError,
			stderr:  "error: network error: could not reach the server\n",
		},
		{
			name:    "session expired",
			args:    []string{"--project", "p1"},
			listErr: testutil.Unauthorized("Could not validate credentials"),
			code:    exitcode.AuthError,
			stderr:  "error: Could not validate credentials\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t).loggedIn(t)
			h.svc.ListTasksErr = tt.listErr

			stdout, stderr, code := h.run(t, &commands.TasksCmd{}, tt.args...)

			expectCode(t, code, tt.code, stderr)
			if stderr != tt.stderr {
				t.Errorf("expected stderr %q, got %q", tt.stderr, stderr)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
		})
	}
}

func TestTaskAddCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)

	stdout, stderr, code := h.run(t, &commands.TaskAddCmd{},
		"--project", "p1", "--priority", "high", "--assignee", "u1", "Write", "the", "docs")

	expectCode(t, code, exitcode.Success, stderr)
	if !strings.HasPrefix(stdout, "Created task-") {
		t.Errorf("unexpected output %q", stdout)
	}
	req := h.svc.LastCreateTask
	if req.Title != "Write the docs" || req.ProjectID != "p1" || req.Priority != "high" {
		t.Errorf("unexpected request %+v", req)
	}
	if len(req.AssigneeUserIDs) != 1 || req.AssigneeUserIDs[0] != "u1" {
		t.Errorf("unexpected assignees %v", req.AssigneeUserIDs)
	}
}

func TestTaskAddCommand_Validation(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"missing title", []string{"--project", "p1"}, "error: title required\n"},
		{"missing project", []string{"Title"}, "error: a project id is required\n"},
		{"bad status", []string{"--project", "p1", "--status", "later", "Title"}, "error: invalid status: later (want one of: open, in_progress, done)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t).loggedIn(t)

			_, stderr, code := h.run(t, &commands.TaskAddCmd{}, tt.args...)

			expectCode(t, code, exitcode.UserError, stderr)
			if stderr != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr)
			}
			if h.svc.Calls("CreateTask") != 0 {
				t.Error("expected no request")
			}
		})
	}
}

func TestTaskShowCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)
	if _, err := h.svc.AddComment(context.Background(), "t1", "Looks good"); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run(t, &commands.TaskShowCmd{}, "t1")

	expectCode(t, code, exitcode.Success, stderr)
	for _, want := range []string{"ID:          t1\n", "Title:       Write docs\n", "Comments (1)\n", "  - Looks good\n"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in %q", want, stdout)
		}
	}
}

func TestTaskShowCommand_NotFound(t *testing.T) {
	h := newHarness(t).loggedIn(t)

	_, stderr, code := h.run(t, &commands.TaskShowCmd{}, "missing")

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: Task not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestTaskUpdateCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)

	stdout, stderr, code := h.run(t, &commands.TaskUpdateCmd{}, "--status", "done", "--description", "", "t1")

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "Updated t1\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	p := h.svc.LastPatch
	if p.Status == nil || *p.Status != "done" {
		t.Errorf("expected status patch, got %+v", p)
	}
	if p.Description == nil || *p.Description != "" {
		t.Errorf("expected explicit empty description, got %+v", p.Description)
	}
	if p.Title != nil || p.Priority != nil || p.DueDate != nil {
		t.Errorf("unset flags must not be sent: %+v", p)
	}
}

func TestTaskUpdateCommand_NothingToUpdate(t *testing.T) {
	h := newHarness(t).loggedIn(t)

	_, stderr, code := h.run(t, &commands.TaskUpdateCmd{}, "t1")

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: nothing to update\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestTaskCommentCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)

	stdout, stderr, code := h.run(t, &commands.TaskCommentCmd{}, "t1", "ship", "it")

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	comments, _ := h.svc.ListComments(context.Background(), "t1")
	if len(comments) != 1 || comments[0].Body != "ship it" {
		t.Errorf("unexpected comments %+v", comments)
	}
}

func TestBoardCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)

	stdout, stderr, code := h.run(t, &commands.BoardCmd{}, "--project", "p1")

	expectCode(t, code, exitcode.Success, stderr)
	for _, want := range []string{"Open (1)\n", "In Progress (1)\n", "Done (1)\n", "Fix login  (t2)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in %q", want, stdout)
		}
	}
	if h.svc.LastWindow.Limit != config.DefaultBoardLimit {
		t.Errorf("expected board limit, got %d", h.svc.LastWindow.Limit)
	}
}

func TestMoveCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)

	stdout, stderr, code := h.run(t, &commands.MoveCmd{}, "--project", "p1", "t1", "done")

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if task, _ := h.svc.Task("t1"); task.Status != service.StatusDone {
		t.Errorf("expected t1 done, got %q", task.Status)
	}
}

func TestMoveCommand_Rejected(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)
	h.svc.UpdateTaskErr = &apiclient.Error{Status: http.StatusInternalServerError}

	_, stderr, code := h.run(t, &commands.MoveCmd{}, "--project", "p1", "t1", "done")

	expectCode(t, code, exitcode.BackendError, stderr)
	if stderr != "error: Failed to move task\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestMoveCommand_UnknownTask(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)

	_, stderr, code := h.run(t, &commands.MoveCmd{}, "--project", "p1", "t4", "done")

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: task t4 is not on the board\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestTeamCommands(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	h.svc.AddTeam("team-a", "Platform", service.TeamMember{UserID: "u1", Email: "u1@example.com", RoleInTeam: "owner"})

	stdout, stderr, code := h.run(t, &commands.TeamsCmd{})
	expectCode(t, code, exitcode.Success, stderr)
	if !strings.Contains(stdout, "Platform  (team-a)") {
		t.Errorf("unexpected teams output %q", stdout)
	}

	stdout, stderr, code = h.run(t, &commands.TeamAddMemberCmd{}, "team-a", "u2")
	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	stdout, stderr, code = h.run(t, &commands.TeamShowCmd{}, "team-a")
	expectCode(t, code, exitcode.Success, stderr)
	for _, want := range []string{"Members (2)\n", "  - u1@example.com (u1) [owner]\n", "  - u2 [member]\n"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in %q", want, stdout)
		}
	}
}

func TestTeamCreateCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)

	stdout, stderr, code := h.run(t, &commands.TeamCreateCmd{}, "Core", "Team")

	expectCode(t, code, exitcode.Success, stderr)
	if !strings.HasPrefix(stdout, "Created ") {
		t.Errorf("unexpected output %q", stdout)
	}
	page, _ := h.svc.ListTeams(context.Background(), service.Window{})
	if len(page.Items) != 1 || page.Items[0].Name != "Core Team" {
		t.Errorf("unexpected teams %+v", page.Items)
	}
}

func TestTeamShowCommand_NotFound(t *testing.T) {
	h := newHarness(t).loggedIn(t)

	_, stderr, code := h.run(t, &commands.TeamShowCmd{}, "nope")

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: Team not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestNotificationsCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	h.svc.AddNotification(service.Notification{Type: "task_assigned", Message: "You were assigned", IsRead: false})
	h.svc.AddNotification(service.Notification{Message: "Old news", IsRead: true})

	stdout, stderr, code := h.run(t, &commands.NotificationsCmd{}, "--unread")

	expectCode(t, code, exitcode.Success, stderr)
	if !h.svc.LastNotificationFilter.UnreadOnly {
		t.Error("expected unread_only filter")
	}
	if !strings.Contains(stdout, "   1 * [task_assigned] You were assigned\n") || strings.Contains(stdout, "Old news") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestAnalyticsCommand(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	h.svc.SetProjectRollup("p1", service.Rollup{TotalTasks: 8, OpenTasks: 3, InProgressTasks: 1, DoneTasks: 4})

	stdout, stderr, code := h.run(t, &commands.AnalyticsCmd{}, "--project", "p1")

	expectCode(t, code, exitcode.Success, stderr)
	if !strings.HasPrefix(stdout, "Project p1\n") || !strings.Contains(stdout, " 50%\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestAnalyticsCommand_Validation(t *testing.T) {
	h := newHarness(t).loggedIn(t)

	for _, args := range [][]string{nil, {"--team", "a", "--project", "b"}} {
		_, stderr, code := h.run(t, &commands.AnalyticsCmd{}, args...)
		expectCode(t, code, exitcode.UserError, stderr)
	}

	_, stderr, code := h.run(t, &commands.AnalyticsCmd{}, "--team", "ghost")
	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: Team not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestQuietSuppressesOk(t *testing.T) {
	h := newHarness(t).loggedIn(t)
	seedTasks(h)
	h.env.Config.Quiet = true

	stdout, stderr, code := h.run(t, &commands.TaskCommentCmd{}, "t1", "hi")

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestRegistry_GroupsAndAll(t *testing.T) {
	reg := commands.NewRegistry()
	for _, c := range []commands.Command{&commands.TaskAddCmd{}, &commands.TaskShowCmd{}, &commands.TasksCmd{}} {
		if err := reg.Register(c); err != nil {
			t.Fatalf("register %s: %v", c.Name(), err)
		}
	}
	if err := reg.Register(&commands.TaskShowCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	if !reg.HasGroup("task") {
		t.Error("expected task to be a group")
	}
	if reg.HasGroup("tasks") {
		t.Error("tasks is a command, not a group")
	}

	var names []string
	for _, c := range reg.All() {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "task add,task show,tasks" {
		t.Errorf("expected sorted unique commands, got %s", got)
	}
}
