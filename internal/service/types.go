// Package service defines the backend-agnostic interface for task operations.
package service

import "taskboard/internal/apiclient"

// Task statuses, in board column order.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses lists the valid task statuses in board order.
var Statuses = []string{StatusOpen, StatusInProgress, StatusDone}

// Priorities lists the valid task priorities.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return contains(Statuses, s)
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	return contains(Priorities, p)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// User is the authenticated profile returned by /auth/me.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles,omitempty"`
	IsActive bool     `json:"is_active,omitempty"`
}

// AuthToken is the /auth/login response.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// RegisterRequest is the /auth/register body. Roles encodes as null when empty.
type RegisterRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Task represents a single task item.
type Task struct {
	ID              string   `json:"id"`
	ProjectID       string   `json:"project_id,omitempty"`
	TeamID          string   `json:"team_id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority,omitempty"`
	DueDate         string   `json:"due_date,omitempty"`
	AssigneeUserIDs []string `json:"assignee_user_ids,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

// TaskFilter holds the optional predicates of a task listing.
// Empty fields are omitted from the request.
type TaskFilter struct {
	ProjectID string
	TeamID    string
	Q         string
	Status    string
	Priority  string
}

// Scoped reports whether the filter names a project or team, which the
// backend requires for task listings.
func (f TaskFilter) Scoped() bool {
	return f.ProjectID != "" || f.TeamID != ""
}

// Query returns the filter as request parameters.
func (f TaskFilter) Query() apiclient.Query {
	return apiclient.Query{
		"project_id": f.ProjectID,
		"team_id":    f.TeamID,
		"q":          f.Q,
		"status":     f.Status,
		"priority":   f.Priority,
	}
}

// CreateTaskRequest is the POST /tasks body.
type CreateTaskRequest struct {
	ProjectID       string   `json:"project_id,omitempty"`
	TeamID          string   `json:"team_id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Status          string   `json:"status,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	DueDate         string   `json:"due_date,omitempty"`
	AssigneeUserIDs []string `json:"assignee_user_ids,omitzero"`
}

// TaskPatch is a partial PATCH /tasks/{id} body. Nil fields are not sent.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil && p.DueDate == nil
}

// Apply returns t with the patch's fields applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	return t
}

// Comment belongs to exactly one task and is append-only.
type Comment struct {
	ID           string `json:"id"`
	TaskID       string `json:"task_id,omitempty"`
	AuthorUserID string `json:"author_user_id,omitempty"`
	Body         string `json:"body"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Team is a row of the teams listing.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// TeamMember is a member entry of a team detail.
type TeamMember struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email,omitempty"`
	RoleInTeam string `json:"role_in_team"`
}

// TeamDetail is GET /teams/{id}.
type TeamDetail struct {
	Team
	Members []TeamMember `json:"members"`
}

// AddMemberRequest is the POST /teams/{id}/members body.
type AddMemberRequest struct {
	UserID     string `json:"user_id"`
	RoleInTeam string `json:"role_in_team"`
}

// DefaultTeamRole is used when a member is added without a role.
const DefaultTeamRole = "member"

// Notification is a row of the notifications listing.
type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at,omitempty"`
}

// NotificationFilter holds the notifications listing predicates.
type NotificationFilter struct {
	UnreadOnly bool
}

// Query returns the filter as request parameters. unread_only is always sent.
func (f NotificationFilter) Query() apiclient.Query {
	return apiclient.Query{"unread_only": f.UnreadOnly}
}

// Rollup holds the precomputed task counters of a team or project.
type Rollup struct {
	TeamID          string `json:"team_id,omitempty"`
	ProjectID       string `json:"project_id,omitempty"`
	TotalTasks      int    `json:"total_tasks"`
	OpenTasks       int    `json:"open_tasks"`
	InProgressTasks int    `json:"in_progress_tasks"`
	DoneTasks       int    `json:"done_tasks"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// Max returns the largest counter, used to scale rollup bars.
func (r Rollup) Max() int {
	m := r.TotalTasks
	for _, v := range []int{r.OpenTasks, r.InProgressTasks, r.DoneTasks} {
		if v > m {
			m = v
		}
	}
	return m
}
