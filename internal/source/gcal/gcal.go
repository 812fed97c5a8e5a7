// Package gcal produces meeting events from a Google Calendar.
package gcal

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"standup-report/internal/report"
)

// RedirectURL is where the OAuth consent flow sends the authorization code.
const RedirectURL = "http://localhost:7890"

// OAuthConfig builds the OAuth2 config for read-only calendar access. The
// auth command and the source share it so tokens stay interchangeable.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  RedirectURL,
		Scopes: []string{
			calendar.CalendarReadonlyScope,
			calendar.CalendarEventsReadonlyScope,
		},
	}
}

// Source fetches confirmed calendar events as meeting attendance.
type Source struct {
	ts         oauth2.TokenSource
	calendarID string
}

// New builds a calendar source from an already-authorized token source.
func New(ts oauth2.TokenSource, calendarID string) *Source {
	return &Source{ts: ts, calendarID: calendarID}
}

func (s *Source) Name() string { return "gcal" }

func (s *Source) Events(ctx context.Context, w report.Window) ([]report.RawEvent, error) {
	srv, err := calendar.NewService(ctx, option.WithTokenSource(s.ts))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create calendar service")
	}

	call := srv.Events.List(s.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(w.Since.Format(time.RFC3339)).
		TimeMax(w.Until.Format(time.RFC3339))

	var raws []report.RawEvent
	err = call.Pages(ctx, func(resp *calendar.Events) error {
		raws = append(raws, Translate(resp.Items)...)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list calendar events",
			goerr.V("calendar_id", s.calendarID))
	}

	slog.Debug("fetched calendar events", "calendar_id", s.calendarID, "count", len(raws))
	return raws, nil
}

// Translate converts API events into meeting raw events. Only confirmed
// events count as attendance; meetings carry no URL so they stay outside
// URL-based item identity.
func Translate(items []*calendar.Event) []report.RawEvent {
	var raws []report.RawEvent
	for _, item := range items {
		if item.Status != "confirmed" {
			continue
		}
		start := startTime(item)
		raws = append(raws, report.RawEvent{
			Origin:    report.MeetingsOrigin,
			Kind:      report.RawMeeting,
			Action:    "confirmed",
			Title:     item.Summary,
			Timestamp: start,
		})
	}
	return raws
}

// startTime resolves an event's start, handling both timed and all-day
// events. A zero time is returned when neither parses; the normalizer
// drops such events as malformed.
func startTime(item *calendar.Event) time.Time {
	if item.Start == nil {
		return time.Time{}
	}
	if item.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			return t
		}
	}
	if item.Start.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", item.Start.Date, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
