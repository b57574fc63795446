package views_test

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/service"
	"taskboard/internal/testutil"
	"taskboard/internal/views"
)

func seedTasks(svc *testutil.FakeService) {
	svc.AddTask(service.Task{ID: "t1", ProjectID: "p1", Title: "Task Open", Status: service.StatusOpen})
	svc.AddTask(service.Task{ID: "t2", ProjectID: "p1", Title: "Task In Progress", Status: service.StatusInProgress})
	svc.AddTask(service.Task{ID: "t3", ProjectID: "p1", Title: "Task Done", Status: service.StatusDone})
}

func columnIDs(b *views.Board) map[string][]string {
	out := map[string][]string{}
	for _, col := range b.Columns() {
		for _, t := range col.Tasks {
			out[col.Status] = append(out[col.Status], t.ID)
		}
	}
	return out
}

// observingTasks records the board columns at the moment UpdateTask is called.
type observingTasks struct {
	*testutil.FakeService
	board  *views.Board
	during map[string][]string
}

func (o *observingTasks) UpdateTask(ctx context.Context, id string, p service.TaskPatch) (service.Task, error) {
	o.during = columnIDs(o.board)
	return o.FakeService.UpdateTask(ctx, id, p)
}

func TestBoard_MoveOpenToDone(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	obs := &observingTasks{FakeService: svc}
	board := views.NewBoard(obs, 200)
	obs.board = board

	if err := board.SetProject(ctx, "p1"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if svc.LastWindow != (service.Window{Limit: 200, Offset: 0}) {
		t.Errorf("expected board window {200 0}, got %+v", svc.LastWindow)
	}

	if err := board.Move(ctx, "t1", service.StatusDone, -1); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if got := obs.during[service.StatusDone]; len(got) != 2 || got[1] != "t1" {
		t.Errorf("task should be under done before the backend answers, got %v", obs.during)
	}
	if got := columnIDs(board)[service.StatusOpen]; len(got) != 0 {
		t.Errorf("open column should be empty, got %v", got)
	}
	if stored, _ := svc.Task("t1"); stored.Status != service.StatusDone {
		t.Errorf("backend should have status done, got %q", stored.Status)
	}
	if p := svc.LastPatch; p.Status == nil || *p.Status != service.StatusDone || p.Title != nil {
		t.Errorf("expected status-only patch, got %+v", p)
	}
}

func TestBoard_MoveRollback(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	board := views.NewBoard(svc, 200)
	_ = board.SetProject(ctx, "p1")

	svc.UpdateTaskErr = errors.New("")
	if err := board.Move(ctx, "t1", service.StatusDone, 0); err == nil {
		t.Fatal("expected error")
	}

	cols := columnIDs(board)
	if got := cols[service.StatusOpen]; len(got) != 1 || got[0] != "t1" {
		t.Errorf("task should be back under open, got %v", cols)
	}
	if got := cols[service.StatusDone]; len(got) != 1 {
		t.Errorf("done column should be restored, got %v", got)
	}
	if board.Err() != views.MsgMoveTask {
		t.Errorf("expected %q, got %q", views.MsgMoveTask, board.Err())
	}

	svc.UpdateTaskErr = testutil.BadRequest("Invalid status transition")
	_ = board.Move(ctx, "t1", service.StatusDone, 0)
	if board.Err() != "Invalid status transition" {
		t.Errorf("expected backend message, got %q", board.Err())
	}
}

func TestBoard_MoveNoop(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	board := views.NewBoard(svc, 200)
	_ = board.SetProject(ctx, "p1")

	for _, index := range []int{-1, 0} {
		if err := board.Move(ctx, "t2", service.StatusInProgress, index); err != nil {
			t.Fatalf("move failed: %v", err)
		}
	}
	if n := svc.Calls("UpdateTask"); n != 0 {
		t.Errorf("same-position drop should not call the backend, got %d calls", n)
	}
}

func TestBoard_MoveReorderWithinColumn(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{ID: "a", ProjectID: "p1", Status: service.StatusOpen})
	svc.AddTask(service.Task{ID: "b", ProjectID: "p1", Status: service.StatusOpen})
	svc.AddTask(service.Task{ID: "c", ProjectID: "p1", Status: service.StatusOpen})
	board := views.NewBoard(svc, 200)
	_ = board.SetProject(ctx, "p1")

	if err := board.Move(ctx, "c", service.StatusOpen, 0); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	got := columnIDs(board)[service.StatusOpen]
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBoard_MoveErrors(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	board := views.NewBoard(svc, 200)
	_ = board.SetProject(ctx, "p1")

	if err := board.Move(ctx, "t1", "blocked", -1); err == nil {
		t.Error("expected invalid status error")
	}
	if err := board.Move(ctx, "missing", service.StatusDone, -1); err == nil {
		t.Error("expected missing task error")
	}
}

func TestBoard_NoProject(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	board := views.NewBoard(svc, 200)

	if err := board.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if svc.Calls("ListTasks") != 0 {
		t.Error("board without project should not request tasks")
	}
	for _, col := range board.Columns() {
		if len(col.Tasks) != 0 {
			t.Errorf("expected empty column %s", col.Status)
		}
	}
	if _, err := board.Create(ctx, "x"); !errors.Is(err, views.ErrProjectRequired) {
		t.Errorf("expected ErrProjectRequired, got %v", err)
	}
}

func TestBoard_EmptyStatusShownAsOpen(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{ID: "x", ProjectID: "p1", Title: "No status"})
	board := views.NewBoard(svc, 200)
	_ = board.SetProject(context.Background(), "p1")

	if got := columnIDs(board)[service.StatusOpen]; len(got) != 1 || got[0] != "x" {
		t.Errorf("expected task under open, got %v", got)
	}
	cols := board.Columns()
	if cols[1].Title != "In Progress" {
		t.Errorf("expected In Progress title, got %q", cols[1].Title)
	}
}

func TestBoard_CreatePrepends(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	board := views.NewBoard(svc, 200)
	_ = board.SetProject(ctx, "p1")
	listCalls := svc.Calls("ListTasks")

	task, err := board.Create(ctx, "  New card  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	req := svc.LastCreateTask
	if req.Title != "New card" || req.Status != service.StatusOpen || req.Priority != service.PriorityMedium || req.ProjectID != "p1" {
		t.Errorf("unexpected create request %+v", req)
	}
	if tasks := board.Tasks(); tasks[0].ID != task.ID {
		t.Errorf("created task should be first, got %v", tasks[0].ID)
	}
	if svc.Calls("ListTasks") != listCalls {
		t.Error("board create should not reload")
	}
}

func TestTasksTable_StatusFilter(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	table := views.NewTasksTable(svc, 20)

	if err := table.SetFilter(ctx, service.TaskFilter{ProjectID: "p1"}); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := len(table.List().Items()); got != 3 {
		t.Fatalf("expected 3 tasks, got %d", got)
	}

	if err := table.SetFilter(ctx, service.TaskFilter{ProjectID: "p1", Status: service.StatusInProgress}); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	items := table.List().Items()
	if len(items) != 1 || items[0].Title != "Task In Progress" {
		t.Errorf("expected only Task In Progress, got %+v", items)
	}
	if svc.LastTaskFilter.Status != service.StatusInProgress {
		t.Errorf("expected status filter sent, got %+v", svc.LastTaskFilter)
	}
}

func TestTasksTable_RequiresProject(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	table := views.NewTasksTable(svc, 20)

	_ = table.SetFilter(ctx, service.TaskFilter{ProjectID: "p1"})
	_ = table.Select(ctx, table.List().Items()[0])
	calls := svc.Calls("ListTasks")

	err := table.SetFilter(ctx, service.TaskFilter{ProjectID: "   ", Q: "x"})
	if !errors.Is(err, views.ErrProjectRequired) {
		t.Fatalf("expected ErrProjectRequired, got %v", err)
	}
	if svc.Calls("ListTasks") != calls {
		t.Error("unscoped filter should not request tasks")
	}
	if len(table.List().Items()) != 0 {
		t.Error("page should be cleared")
	}
	if _, ok := table.Selected(); ok {
		t.Error("detail should be cleared")
	}
}

func TestTasksTable_CreateReloadsFromStart(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	for i := 0; i < 5; i++ {
		svc.AddTask(service.Task{ProjectID: "p1", Title: "old", Status: service.StatusOpen})
	}
	table := views.NewTasksTable(svc, 2)
	_ = table.SetFilter(ctx, service.TaskFilter{ProjectID: "p1"})
	_ = table.Next(ctx)
	if table.List().Offset() != 2 {
		t.Fatalf("expected offset 2, got %d", table.List().Offset())
	}

	task, err := table.Create(ctx, "fresh")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if svc.LastCreateTask.ProjectID != "p1" || svc.LastCreateTask.Status != "" {
		t.Errorf("table create should send project and title only, got %+v", svc.LastCreateTask)
	}
	if table.List().Offset() != 0 {
		t.Errorf("expected reload from 0, got %d", table.List().Offset())
	}
	if items := table.List().Items(); items[0].ID != task.ID {
		t.Errorf("created task should be visible, got %+v", items)
	}
}

func TestTasksTable_CreateFailureKeepsPage(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	table := views.NewTasksTable(svc, 20)
	_ = table.SetFilter(ctx, service.TaskFilter{ProjectID: "p1"})

	svc.CreateTaskErr = errors.New("")
	if _, err := table.Create(ctx, "x"); err == nil {
		t.Fatal("expected error")
	}
	if table.List().Err() != views.MsgCreateTask {
		t.Errorf("expected %q, got %q", views.MsgCreateTask, table.List().Err())
	}
	if len(table.List().Items()) != 3 {
		t.Error("page should be untouched")
	}
}

func TestTasksTable_DetailAndComments(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	table := views.NewTasksTable(svc, 20)
	_ = table.SetFilter(ctx, service.TaskFilter{ProjectID: "p1"})

	if err := table.Open(ctx, "t1"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := table.AddComment(ctx, "  looks good  "); err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	comments := table.Comments()
	if len(comments) != 1 || comments[0].Body != "looks good" {
		t.Errorf("expected re-fetched comment, got %+v", comments)
	}
	if err := table.AddComment(ctx, "   "); err == nil {
		t.Error("empty comment should be rejected")
	}

	status := service.StatusDone
	listCalls := svc.Calls("ListTasks")
	updated, err := table.UpdateSelected(ctx, service.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if sel, _ := table.Selected(); sel.Status != service.StatusDone || updated.Status != service.StatusDone {
		t.Errorf("detail should show server version, got %+v", sel)
	}
	if svc.Calls("ListTasks") != listCalls+1 {
		t.Error("update should reload the current page")
	}

	table.CloseDetail()
	if _, ok := table.Selected(); ok {
		t.Error("detail should be closed")
	}
	if len(table.List().Items()) != 3 {
		t.Error("closing detail must not clear the list")
	}
}

func TestTasksTable_OpenFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	table := views.NewTasksTable(svc, 20)
	svc.GetTaskErr = errors.New("")

	if err := table.Open(context.Background(), "t1"); err == nil {
		t.Fatal("expected error")
	}
	if table.DetailErr() != views.MsgLoadTask {
		t.Errorf("expected %q, got %q", views.MsgLoadTask, table.DetailErr())
	}
}

func TestTasksTable_UpdateFailure(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	seedTasks(svc)
	table := views.NewTasksTable(svc, 20)
	_ = table.SetFilter(ctx, service.TaskFilter{ProjectID: "p1"})
	_ = table.Select(ctx, table.List().Items()[0])

	svc.UpdateTaskErr = errors.New("")
	title := "renamed"
	if _, err := table.UpdateSelected(ctx, service.TaskPatch{Title: &title}); err == nil {
		t.Fatal("expected error")
	}
	if table.DetailErr() != views.MsgUpdateTask {
		t.Errorf("expected %q, got %q", views.MsgUpdateTask, table.DetailErr())
	}
	if sel, _ := table.Selected(); sel.Title == "renamed" {
		t.Error("failed update must leave the detail untouched")
	}
}

func TestTeamsTable(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	svc.AddTeam("team-a", "Alpha")
	table := views.NewTeamsTable(svc, 20)

	if err := table.Load(ctx, 0); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, err := table.Create(ctx, "  "); err == nil {
		t.Error("blank team name should be rejected")
	}
	team, err := table.Create(ctx, " Beta ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if team.Name != "Beta" || len(table.List().Items()) != 2 {
		t.Errorf("expected Beta visible after reload, got %+v", table.List().Items())
	}

	if err := table.Select(ctx, "team-a"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := table.AddMember(ctx, " u9 ", ""); err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	detail, _ := table.Selected()
	if len(detail.Members) != 1 || detail.Members[0].UserID != "u9" || detail.Members[0].RoleInTeam != service.DefaultTeamRole {
		t.Errorf("expected refreshed members with default role, got %+v", detail.Members)
	}

	svc.AddTeamMemberErr = errors.New("")
	if err := table.AddMember(ctx, "u10", "admin"); err == nil {
		t.Fatal("expected error")
	}
	if table.DetailErr() != views.MsgAddMember {
		t.Errorf("expected %q, got %q", views.MsgAddMember, table.DetailErr())
	}

	svc.GetTeamErr = errors.New("")
	_ = table.Select(ctx, "team-a")
	if table.DetailErr() != views.MsgLoadTeamDetail {
		t.Errorf("expected %q, got %q", views.MsgLoadTeamDetail, table.DetailErr())
	}
}

// interruptingTeams runs interrupt while the detail of team-a is in flight.
type interruptingTeams struct {
	*testutil.FakeService
	interrupt func()
}

func (s *interruptingTeams) GetTeam(ctx context.Context, id string) (service.TeamDetail, error) {
	if id == "team-a" && s.interrupt != nil {
		interrupt := s.interrupt
		s.interrupt = nil
		interrupt()
	}
	return s.FakeService.GetTeam(ctx, id)
}

func TestTeamsTable_LateDetailDropped(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeService()
	fake.AddTeam("team-a", "Alpha")
	fake.AddTeam("team-b", "Beta")

	tests := []struct {
		name      string
		interrupt func(*views.TeamsTable)
		wantID    string
		wantOpen  bool
	}{
		{
			name:      "another team selected",
			interrupt: func(table *views.TeamsTable) { _ = table.Select(ctx, "team-b") },
			wantID:    "team-b",
			wantOpen:  true,
		},
		{
			name:      "detail closed",
			interrupt: func(table *views.TeamsTable) { table.CloseDetail() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &interruptingTeams{FakeService: fake}
			table := views.NewTeamsTable(svc, 20)
			svc.interrupt = func() { tt.interrupt(table) }

			if err := table.Select(ctx, "team-a"); err != nil {
				t.Fatalf("select failed: %v", err)
			}
			detail, ok := table.Selected()
			if ok != tt.wantOpen || detail.ID != tt.wantID {
				t.Errorf("expected open=%v id=%q, got open=%v %+v", tt.wantOpen, tt.wantID, ok, detail)
			}
		})
	}
}

func TestNotifications_ToggleUnread(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	for i := 0; i < 30; i++ {
		svc.AddNotification(service.Notification{Message: "n", IsRead: i%2 == 0})
	}
	list := views.NewNotifications(svc, 10)

	_ = list.Load(ctx, 0)
	_ = list.List().Next(ctx)
	if list.List().Offset() != 10 {
		t.Fatalf("expected offset 10, got %d", list.List().Offset())
	}

	if err := list.ToggleUnread(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !list.UnreadOnly() || !svc.LastNotificationFilter.UnreadOnly {
		t.Error("expected unread_only sent")
	}
	if list.List().Offset() != 0 || list.List().Meta().Total != 15 {
		t.Errorf("expected offset 0 of 15 unread, got offset %d total %d", list.List().Offset(), list.List().Meta().Total)
	}
}

func TestBars(t *testing.T) {
	bars := views.Bars(service.Rollup{TotalTasks: 8, OpenTasks: 3, InProgressTasks: 1, DoneTasks: 4})
	want := []int{100, 38, 13, 50}
	for i, b := range bars {
		if b.Percent != want[i] {
			t.Errorf("%s: got %d%%, want %d%%", b.Label, b.Percent, want[i])
		}
	}
	for _, b := range views.Bars(service.Rollup{}) {
		if b.Percent != 0 {
			t.Errorf("%s: expected 0%% for empty rollup", b.Label)
		}
	}
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewFakeService()
	svc.SetTeamRollup("team-a", service.Rollup{TeamID: "team-a", TotalTasks: 2})
	a := views.NewAnalytics(svc)

	r, err := a.Team(ctx, "team-a")
	if err != nil || r.TotalTasks != 2 {
		t.Fatalf("expected rollup, got %+v err=%v", r, err)
	}
	if _, err := a.Project(ctx, ""); !errors.Is(err, views.ErrProjectRequired) {
		t.Errorf("expected ErrProjectRequired, got %v", err)
	}
	if _, err := a.Project(ctx, "nope"); err == nil || err.Error() != "Project not found" {
		t.Errorf("expected backend message, got %v", err)
	}

	cause := errors.New("")
	svc.AnalyticsErr = cause
	_, err = a.Team(ctx, "team-a")
	if err == nil || err.Error() != views.MsgTeamAnalytics || !errors.Is(err, cause) {
		t.Errorf("expected default message wrapping cause, got %v", err)
	}
}
