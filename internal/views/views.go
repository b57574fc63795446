// Package views implements the screens of the client on top of list
// controllers: the kanban board, the tasks table, the teams table, the
// notifications list and the analytics rollups. CLI commands and the TUI
// drive the same view types.
package views

import "errors"

// ErrProjectRequired is returned when a task listing names neither a project
// nor a team.
var ErrProjectRequired = errors.New("a project id is required")

// Messages shown when a failure carries no message of its own.
const (
	MsgLoadTasks         = "Failed to load tasks"
	MsgLoadTask          = "Failed to load task"
	MsgCreateTask        = "Failed to create task"
	MsgMoveTask          = "Failed to move task"
	MsgUpdateTask        = "Failed to update task"
	MsgLoadComments      = "Failed to load comments"
	MsgAddComment        = "Failed to add comment"
	MsgLoadTeams         = "Failed to load teams"
	MsgCreateTeam        = "Failed to create team"
	MsgLoadTeamDetail    = "Failed to load team detail"
	MsgAddMember         = "Failed to add member"
	MsgLoadNotifications = "Failed to load notifications"
	MsgTeamAnalytics     = "Failed to load team analytics"
	MsgProjectAnalytics  = "Failed to load project analytics"
	MsgLogin             = "Login failed"
	MsgRegister          = "Registration failed"
)
