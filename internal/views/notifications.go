package views

import (
	"context"

	"taskboard/internal/listview"
	"taskboard/internal/service"
)

// Notifications is the paginated notifications list.
type Notifications struct {
	list *listview.Controller[service.Notification, service.NotificationFilter]
}

// NewNotifications creates a list with the given page size.
func NewNotifications(svc service.NotificationService, limit int) *Notifications {
	return &Notifications{
		list: listview.New(svc.ListNotifications, service.NotificationFilter{}, limit, MsgLoadNotifications),
	}
}

// List exposes the underlying list controller.
func (v *Notifications) List() *listview.Controller[service.Notification, service.NotificationFilter] {
	return v.list
}

// Load fetches the page at offset.
func (v *Notifications) Load(ctx context.Context, offset int) error {
	return v.list.Load(ctx, offset)
}

// UnreadOnly reports whether read notifications are hidden.
func (v *Notifications) UnreadOnly() bool {
	return v.list.Filter().UnreadOnly
}

// SetUnreadOnly changes the unread filter and reloads from the first page.
func (v *Notifications) SetUnreadOnly(ctx context.Context, unread bool) error {
	return v.list.SetFilter(ctx, service.NotificationFilter{UnreadOnly: unread})
}

// ToggleUnread flips the unread filter.
func (v *Notifications) ToggleUnread(ctx context.Context) error {
	return v.SetUnreadOnly(ctx, !v.UnreadOnly())
}
