package taskapi

import (
	"context"

	"taskboard/internal/service"
)

// ListNotifications returns one page of notifications via GET /notifications.
func (c *Client) ListNotifications(ctx context.Context, filter service.NotificationFilter, w service.Window) (service.Page[service.Notification], error) {
	var page service.Page[service.Notification]
	_, err := c.authed(ctx, get("/notifications", filter.Query().Merge(w.Query())), &page)
	return page, err
}
