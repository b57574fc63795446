package taskapi

import (
	"context"
	"net/url"

	"taskboard/internal/service"
)

func taskPath(taskID string) string {
	return "/tasks/" + url.PathEscape(taskID)
}

// ListTasks returns one page of tasks via GET /tasks.
func (c *Client) ListTasks(ctx context.Context, filter service.TaskFilter, w service.Window) (service.Page[service.Task], error) {
	var page service.Page[service.Task]
	_, err := c.authed(ctx, get("/tasks", filter.Query().Merge(w.Query())), &page)
	return page, err
}

// CreateTask creates a task via POST /tasks.
func (c *Client) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	var task service.Task
	_, err := c.authed(ctx, post("/tasks", req), &task)
	return task, err
}

// GetTask returns one task via GET /tasks/{id}.
func (c *Client) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	var task service.Task
	_, err := c.authed(ctx, get(taskPath(taskID), nil), &task)
	return task, err
}

// UpdateTask applies a partial update via PATCH /tasks/{id}.
func (c *Client) UpdateTask(ctx context.Context, taskID string, p service.TaskPatch) (service.Task, error) {
	var task service.Task
	_, err := c.authed(ctx, patch(taskPath(taskID), p), &task)
	return task, err
}

// ListComments returns comments via GET /tasks/{id}/comments.
// A missing body yields an empty list.
func (c *Client) ListComments(ctx context.Context, taskID string) ([]service.Comment, error) {
	var comments []service.Comment
	if _, err := c.authed(ctx, get(taskPath(taskID)+"/comments", nil), &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []service.Comment{}
	}
	return comments, nil
}

// AddComment appends a comment via POST /tasks/{id}/comments.
func (c *Client) AddComment(ctx context.Context, taskID, body string) (service.Comment, error) {
	var comment service.Comment
	req := struct {
		Body string `json:"body"`
	}{body}
	_, err := c.authed(ctx, post(taskPath(taskID)+"/comments", req), &comment)
	return comment, err
}
