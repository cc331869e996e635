// Package google wraps the Calendar and Tasks APIs for the workflow
// integration. It is a thin pass-through: requests are scoped to the primary
// calendar and default task list of the configured account.
package google

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

const eventTimeZone = "America/Bogota"

// Service holds authenticated Calendar and Tasks clients.
type Service struct {
	calendar *calendar.Service
	tasks    *tasks.Service
}

// NewService builds the clients from a refresh token. The token source
// renews access tokens transparently.
func NewService(ctx context.Context, clientID, clientSecret, refreshToken string) (*Service, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauthgoogle.Endpoint,
		Scopes:       []string{calendar.CalendarScope, tasks.TasksScope},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	calendarSvc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, err
	}
	tasksSvc, err := tasks.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, err
	}

	return &Service{calendar: calendarSvc, tasks: tasksSvc}, nil
}

// ListEvents returns upcoming events on the primary calendar. Zero bounds
// default to a 7-day window starting now.
func (s *Service) ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) ([]*calendar.Event, error) {
	if timeMin.IsZero() {
		timeMin = time.Now().UTC()
	}
	if timeMax.IsZero() {
		timeMax = timeMin.Add(7 * 24 * time.Hour)
	}
	if maxResults <= 0 {
		maxResults = 100
	}

	result, err := s.calendar.Events.List("primary").
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// CreateEvent inserts an event on the primary calendar.
func (s *Service) CreateEvent(ctx context.Context, summary, description, location string, start, end time.Time) (*calendar.Event, error) {
	event := &calendar.Event{
		Summary:     summary,
		Description: description,
		Location:    location,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: eventTimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: eventTimeZone,
		},
	}

	return s.calendar.Events.Insert("primary", event).Context(ctx).Do()
}

// ListTasks returns the default task list.
func (s *Service) ListTasks(ctx context.Context) ([]*tasks.Task, error) {
	result, err := s.tasks.Tasks.List("@default").
		ShowCompleted(true).
		ShowHidden(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// CreateTask inserts a task on the default list.
func (s *Service) CreateTask(ctx context.Context, title, notes string, due time.Time) (*tasks.Task, error) {
	task := &tasks.Task{
		Title: title,
		Notes: notes,
	}
	if !due.IsZero() {
		task.Due = due.Format(time.RFC3339)
	}

	return s.tasks.Tasks.Insert("@default", task).Context(ctx).Do()
}

// CompleteTask marks a task on the default list as completed.
func (s *Service) CompleteTask(ctx context.Context, taskID string) (*tasks.Task, error) {
	task, err := s.tasks.Tasks.Get("@default", taskID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	task.Status = "completed"
	return s.tasks.Tasks.Update("@default", task.Id, task).Context(ctx).Do()
}
