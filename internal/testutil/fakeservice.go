// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"taskboard/internal/apiclient"
	"taskboard/internal/service"
)

// Unauthorized returns the error the backend sends for a rejected token.
func Unauthorized(msg string) error {
	return &apiclient.Error{Status: http.StatusUnauthorized, Message: msg, Data: map[string]any{"detail": msg}}
}

// NotFound returns a 404 backend error.
func NotFound(msg string) error {
	return &apiclient.Error{Status: http.StatusNotFound, Message: msg, Data: map[string]any{"detail": msg}}
}

// BadRequest returns a 400 backend error.
func BadRequest(msg string) error {
	return &apiclient.Error{Status: http.StatusBadRequest, Message: msg, Data: map[string]any{"detail": msg}}
}

type fakeUser struct {
	user     service.User
	password string
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu            sync.RWMutex
	users         map[string]fakeUser // email -> user
	tokens        map[string]string   // token -> email
	tasks         []service.Task
	comments      map[string][]service.Comment // taskID -> comments
	teams         []service.TeamDetail
	notifications []service.Notification
	rollups       map[string]service.Rollup // "team:<id>" or "project:<id>"
	nextID        int

	// Error injection for testing
	RegisterErr          error
	LoginErr             error
	MeErr                error
	ListTasksErr         error
	CreateTaskErr        error
	GetTaskErr           error
	UpdateTaskErr        error
	ListCommentsErr      error
	AddCommentErr        error
	ListTeamsErr         error
	CreateTeamErr        error
	GetTeamErr           error
	AddTeamMemberErr     error
	ListNotificationsErr error
	AnalyticsErr         error

	// Recorded arguments
	calls                  map[string]int
	LastTaskFilter         service.TaskFilter
	LastWindow             service.Window
	LastNotificationFilter service.NotificationFilter
	LastPatch              service.TaskPatch
	LastCreateTask         service.CreateTaskRequest
	LastRegister           service.RegisterRequest
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:    make(map[string]fakeUser),
		tokens:   make(map[string]string),
		comments: make(map[string][]service.Comment),
		rollups:  make(map[string]service.Rollup),
		calls:    make(map[string]int),
	}
}

// Calls returns how many times method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

func (f *FakeService) record(method string) {
	f.calls[method]++
}

func (f *FakeService) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// AddUser registers a user with a password.
func (f *FakeService) AddUser(email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := service.User{ID: f.newID("user"), Email: email, IsActive: true}
	f.users[email] = fakeUser{user: u, password: password}
	return u
}

// IssueToken returns a valid token for email, as if the user had logged in.
func (f *FakeService) IssueToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := f.newID("token")
	f.tokens[tok] = email
	return tok
}

// RevokeTokens invalidates every issued token.
func (f *FakeService) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// AddTask stores t as-is, assigning an id when empty.
func (f *FakeService) AddTask(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = f.newID("task")
	}
	f.tasks = append(f.tasks, t)
	return t
}

// Task returns the stored task by id.
func (f *FakeService) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// AddTeam stores a team with members.
func (f *FakeService) AddTeam(id, name string, members ...service.TeamMember) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams = append(f.teams, service.TeamDetail{Team: service.Team{ID: id, Name: name}, Members: members})
}

// AddNotification stores a notification.
func (f *FakeService) AddNotification(n service.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == "" {
		n.ID = f.newID("notif")
	}
	f.notifications = append(f.notifications, n)
}

// SetTeamRollup stores the analytics of a team.
func (f *FakeService) SetTeamRollup(teamID string, r service.Rollup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollups["team:"+teamID] = r
}

// SetProjectRollup stores the analytics of a project.
func (f *FakeService) SetProjectRollup(projectID string, r service.Rollup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollups["project:"+projectID] = r
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, req service.RegisterRequest) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Register")
	f.LastRegister = req
	if f.RegisterErr != nil {
		return service.User{}, f.RegisterErr
	}
	if _, exists := f.users[req.Email]; exists {
		return service.User{}, BadRequest("Email already registered")
	}
	u := service.User{ID: f.newID("user"), Email: req.Email, Roles: req.Roles, IsActive: true}
	f.users[req.Email] = fakeUser{user: u, password: req.Password}
	return u, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) (service.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Login")
	if f.LoginErr != nil {
		return service.AuthToken{}, f.LoginErr
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return service.AuthToken{}, Unauthorized("Invalid credentials")
	}
	tok := f.newID("token")
	f.tokens[tok] = email
	return service.AuthToken{AccessToken: tok, TokenType: "bearer"}, nil
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context, token string) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Me")
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	email, ok := f.tokens[token]
	if !ok {
		return service.User{}, Unauthorized("Could not validate credentials")
	}
	return f.users[email].user, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, filter service.TaskFilter, w service.Window) (service.Page[service.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasks")
	f.LastTaskFilter = filter
	f.LastWindow = w
	if f.ListTasksErr != nil {
		return service.Page[service.Task]{}, f.ListTasksErr
	}

	var matched []service.Task
	for _, t := range f.tasks {
		if matchTask(t, filter) {
			matched = append(matched, t)
		}
	}
	return paginate(matched, w), nil
}

func matchTask(t service.Task, f service.TaskFilter) bool {
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.TeamID != "" && t.TeamID != f.TeamID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Q != "" {
		q := strings.ToLower(f.Q)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func paginate[T any](items []T, w service.Window) service.Page[T] {
	limit := w.Limit
	if limit <= 0 {
		limit = 20
	}
	page := service.Page[T]{
		Items: []T{},
		Meta:  service.Meta{Total: len(items), Limit: limit, Offset: w.Offset},
	}
	if w.Offset >= len(items) {
		return page
	}
	end := w.Offset + limit
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[w.Offset:end]...)
	return page
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask")
	f.LastCreateTask = req
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	t := service.Task{
		ID:              f.newID("task"),
		ProjectID:       req.ProjectID,
		TeamID:          req.TeamID,
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
		Priority:        req.Priority,
		DueDate:         req.DueDate,
		AssigneeUserIDs: req.AssigneeUserIDs,
	}
	if t.Status == "" {
		t.Status = service.StatusOpen
	}
	if t.Priority == "" {
		t.Priority = service.PriorityMedium
	}
	f.tasks = append([]service.Task{t}, f.tasks...)
	return t, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	for _, t := range f.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return service.Task{}, NotFound("Task not found")
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, taskID string, p service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask")
	f.LastPatch = p
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == taskID {
			f.tasks[i] = p.Apply(t)
			return f.tasks[i], nil
		}
	}
	return service.Task{}, NotFound("Task not found")
}

// ListComments implements service.Service.
func (f *FakeService) ListComments(ctx context.Context, taskID string) ([]service.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListComments")
	if f.ListCommentsErr != nil {
		return nil, f.ListCommentsErr
	}
	result := make([]service.Comment, len(f.comments[taskID]))
	copy(result, f.comments[taskID])
	return result, nil
}

// AddComment implements service.Service.
func (f *FakeService) AddComment(ctx context.Context, taskID, body string) (service.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddComment")
	if f.AddCommentErr != nil {
		return service.Comment{}, f.AddCommentErr
	}
	c := service.Comment{ID: f.newID("comment"), TaskID: taskID, Body: body}
	f.comments[taskID] = append(f.comments[taskID], c)
	return c, nil
}

// ListTeams implements service.Service.
func (f *FakeService) ListTeams(ctx context.Context, w service.Window) (service.Page[service.Team], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeams")
	f.LastWindow = w
	if f.ListTeamsErr != nil {
		return service.Page[service.Team]{}, f.ListTeamsErr
	}
	teams := make([]service.Team, 0, len(f.teams))
	for _, t := range f.teams {
		teams = append(teams, t.Team)
	}
	return paginate(teams, w), nil
}

// CreateTeam implements service.Service.
func (f *FakeService) CreateTeam(ctx context.Context, name string) (service.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTeam")
	if f.CreateTeamErr != nil {
		return service.Team{}, f.CreateTeamErr
	}
	t := service.Team{ID: f.newID("team"), Name: name}
	f.teams = append(f.teams, service.TeamDetail{Team: t})
	return t, nil
}

// GetTeam implements service.Service.
func (f *FakeService) GetTeam(ctx context.Context, teamID string) (service.TeamDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTeam")
	if f.GetTeamErr != nil {
		return service.TeamDetail{}, f.GetTeamErr
	}
	for _, t := range f.teams {
		if t.ID == teamID {
			detail := t
			detail.Members = append([]service.TeamMember{}, t.Members...)
			return detail, nil
		}
	}
	return service.TeamDetail{}, NotFound("Team not found")
}

// AddTeamMember implements service.Service.
func (f *FakeService) AddTeamMember(ctx context.Context, teamID string, req service.AddMemberRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddTeamMember")
	if f.AddTeamMemberErr != nil {
		return f.AddTeamMemberErr
	}
	for i, t := range f.teams {
		if t.ID == teamID {
			f.teams[i].Members = append(f.teams[i].Members, service.TeamMember{UserID: req.UserID, RoleInTeam: req.RoleInTeam})
			return nil
		}
	}
	return NotFound("Team not found")
}

// ListNotifications implements service.Service.
func (f *FakeService) ListNotifications(ctx context.Context, filter service.NotificationFilter, w service.Window) (service.Page[service.Notification], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListNotifications")
	f.LastNotificationFilter = filter
	f.LastWindow = w
	if f.ListNotificationsErr != nil {
		return service.Page[service.Notification]{}, f.ListNotificationsErr
	}
	var matched []service.Notification
	for _, n := range f.notifications {
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	return paginate(matched, w), nil
}

// TeamAnalytics implements service.Service.
func (f *FakeService) TeamAnalytics(ctx context.Context, teamID string) (service.Rollup, error) {
	return f.rollup("team", teamID, "Team not found")
}

// ProjectAnalytics implements service.Service.
func (f *FakeService) ProjectAnalytics(ctx context.Context, projectID string) (service.Rollup, error) {
	return f.rollup("project", projectID, "Project not found")
}

func (f *FakeService) rollup(kind, id, missing string) (service.Rollup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Analytics")
	if f.AnalyticsErr != nil {
		return service.Rollup{}, f.AnalyticsErr
	}
	r, ok := f.rollups[kind+":"+id]
	if !ok {
		return service.Rollup{}, NotFound(missing)
	}
	return r, nil
}
