package views

import (
	"context"
	"fmt"
	"math"
	"strings"

	"taskboard/internal/service"
)

// Bar is one labelled counter of a rollup.
type Bar struct {
	Label   string
	Value   int
	Percent int
}

// Bars returns the counters of r scaled against its largest counter.
func Bars(r service.Rollup) []Bar {
	top := r.Max()
	bars := []Bar{
		{Label: "Total", Value: r.TotalTasks},
		{Label: "Open", Value: r.OpenTasks},
		{Label: "In Progress", Value: r.InProgressTasks},
		{Label: "Done", Value: r.DoneTasks},
	}
	for i := range bars {
		bars[i].Percent = Percent(bars[i].Value, top)
	}
	return bars
}

// Percent returns value as a rounded percentage of top, or 0 when top is 0.
func Percent(value, top int) int {
	if top <= 0 {
		return 0
	}
	return int(math.Round(float64(value) / float64(top) * 100))
}

// Analytics loads team and project rollups.
type Analytics struct {
	svc service.AnalyticsService
}

// NewAnalytics creates an analytics loader.
func NewAnalytics(svc service.AnalyticsService) *Analytics {
	return &Analytics{svc: svc}
}

// Team returns the rollup of team teamID.
func (a *Analytics) Team(ctx context.Context, teamID string) (service.Rollup, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return service.Rollup{}, fmt.Errorf("team id is required")
	}
	r, err := a.svc.TeamAnalytics(ctx, teamID)
	if err != nil {
		return service.Rollup{}, wrapMessage(err, MsgTeamAnalytics)
	}
	return r, nil
}

// Project returns the rollup of project projectID.
func (a *Analytics) Project(ctx context.Context, projectID string) (service.Rollup, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return service.Rollup{}, ErrProjectRequired
	}
	r, err := a.svc.ProjectAnalytics(ctx, projectID)
	if err != nil {
		return service.Rollup{}, wrapMessage(err, MsgProjectAnalytics)
	}
	return r, nil
}

// messageError keeps the cause of a failure that had no message and shows
// the action's default message instead.
type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }

// wrapMessage returns err unchanged when it has a message, or an error that
// reads fallback and unwraps to err.
func wrapMessage(err error, fallback string) error {
	if strings.TrimSpace(err.Error()) != "" {
		return err
	}
	return &messageError{msg: fallback, err: err}
}
