package taskapi

import (
	"context"
	"net/url"

	"taskboard/internal/service"
)

// TeamAnalytics returns the team rollup via GET /analytics/teams/{id}.
func (c *Client) TeamAnalytics(ctx context.Context, teamID string) (service.Rollup, error) {
	var r service.Rollup
	_, err := c.authed(ctx, get("/analytics/teams/"+url.PathEscape(teamID), nil), &r)
	return r, err
}

// ProjectAnalytics returns the project rollup via GET /analytics/projects/{id}.
func (c *Client) ProjectAnalytics(ctx context.Context, projectID string) (service.Rollup, error) {
	var r service.Rollup
	_, err := c.authed(ctx, get("/analytics/projects/"+url.PathEscape(projectID), nil), &r)
	return r, err
}
