// Package ical produces meeting events from an iCalendar feed, either a
// local file or an HTTP(S) URL.
package ical

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/m-mizutani/goerr/v2"

	"standup-report/internal/report"
)

// Source reads VEVENTs from one calendar location.
type Source struct {
	location string
}

func New(location string) *Source {
	return &Source{location: location}
}

func (s *Source) Name() string { return "ical" }

func (s *Source) Events(ctx context.Context, w report.Window) ([]report.RawEvent, error) {
	r, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	raws, err := Parse(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse calendar", goerr.V("location", s.location))
	}

	slog.Debug("fetched ical events", "location", s.location, "count", len(raws))
	return raws, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(s.location, "http://") || strings.HasPrefix(s.location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build calendar request")
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, goerr.Wrap(err, "calendar request failed", goerr.V("url", s.location))
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, goerr.New("unexpected calendar response status",
				goerr.V("url", s.location), goerr.V("status", resp.StatusCode))
		}
		return resp.Body, nil
	}

	f, err := os.Open(s.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open calendar file", goerr.V("path", s.location))
	}
	return f, nil
}

// Parse decodes every calendar in the stream and converts its events into
// meeting raw events. Cancelled events are skipped; events the decoder
// cannot time-resolve are emitted with a zero timestamp and dropped later
// by the normalizer.
func Parse(r io.Reader) ([]report.RawEvent, error) {
	dec := ical.NewDecoder(r)

	var raws []report.RawEvent
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, ev := range cal.Events() {
			if status, _ := ev.Props.Text(ical.PropStatus); status == "CANCELLED" {
				continue
			}
			summary, _ := ev.Props.Text(ical.PropSummary)

			var start time.Time
			if t, err := ev.DateTimeStart(time.Local); err == nil {
				start = t
			}

			raws = append(raws, report.RawEvent{
				Origin:    report.MeetingsOrigin,
				Kind:      report.RawMeeting,
				Action:    "confirmed",
				Title:     summary,
				Timestamp: start,
			})
		}
	}
	return raws, nil
}
