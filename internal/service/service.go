// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// AuthService covers account creation, login and profile lookup.
// The profile call takes the token explicitly so a fresh token can be
// validated before it is committed to the session.
type AuthService interface {
	// Register creates an account.
	Register(ctx context.Context, req RegisterRequest) (User, error)

	// Login exchanges credentials for an access token.
	Login(ctx context.Context, email, password string) (AuthToken, error)

	// Me returns the profile that token belongs to.
	Me(ctx context.Context, token string) (User, error)
}

// TaskService covers tasks and their comments.
type TaskService interface {
	// ListTasks returns one page of tasks matching filter.
	ListTasks(ctx context.Context, filter TaskFilter, w Window) (Page[Task], error)

	// CreateTask creates a task and returns the stored record.
	CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error)

	// GetTask returns one task.
	GetTask(ctx context.Context, taskID string) (Task, error)

	// UpdateTask applies a partial update and returns the stored record.
	UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (Task, error)

	// ListComments returns the comments of a task.
	ListComments(ctx context.Context, taskID string) ([]Comment, error)

	// AddComment appends a comment to a task.
	AddComment(ctx context.Context, taskID, body string) (Comment, error)
}

// TeamService covers teams and memberships.
type TeamService interface {
	ListTeams(ctx context.Context, w Window) (Page[Team], error)
	CreateTeam(ctx context.Context, name string) (Team, error)
	GetTeam(ctx context.Context, teamID string) (TeamDetail, error)
	AddTeamMember(ctx context.Context, teamID string, req AddMemberRequest) error
}

// NotificationService covers the notifications feed.
type NotificationService interface {
	ListNotifications(ctx context.Context, filter NotificationFilter, w Window) (Page[Notification], error)
}

// AnalyticsService covers rollup counters.
type AnalyticsService interface {
	TeamAnalytics(ctx context.Context, teamID string) (Rollup, error)
	ProjectAnalytics(ctx context.Context, projectID string) (Rollup, error)
}

// Service is the full backend surface.
// All backend calls go through this interface; commands and views never
// build HTTP requests themselves.
type Service interface {
	AuthService
	TaskService
	TeamService
	NotificationService
	AnalyticsService
}
