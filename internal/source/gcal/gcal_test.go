package gcal_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"google.golang.org/api/calendar/v3"

	"standup-report/internal/report"
	"standup-report/internal/source/gcal"
)

func TestTranslate(t *testing.T) {
	items := []*calendar.Event{
		{
			Status:  "confirmed",
			Summary: "Team sync",
			Start:   &calendar.EventDateTime{DateTime: "2026-03-10T10:00:00Z"},
		},
		{
			Status:  "cancelled",
			Summary: "Old meeting",
			Start:   &calendar.EventDateTime{DateTime: "2026-03-10T11:00:00Z"},
		},
		{
			Status:  "tentative",
			Summary: "Maybe",
			Start:   &calendar.EventDateTime{DateTime: "2026-03-10T12:00:00Z"},
		},
	}

	raws := gcal.Translate(items)
	gt.A(t, raws).Length(1)
	gt.V(t, raws[0]).Equal(report.RawEvent{
		Origin:    report.MeetingsOrigin,
		Kind:      report.RawMeeting,
		Action:    "confirmed",
		Title:     "Team sync",
		Timestamp: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	})
}

func TestTranslateAllDayEvent(t *testing.T) {
	items := []*calendar.Event{{
		Status:  "confirmed",
		Summary: "Offsite",
		Start:   &calendar.EventDateTime{Date: "2026-03-10"},
	}}

	raws := gcal.Translate(items)
	gt.A(t, raws).Length(1)
	gt.V(t, raws[0].Timestamp).Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local))
}

func TestTranslateMissingStart(t *testing.T) {
	// No resolvable start time: the event is still emitted, with a zero
	// timestamp, and normalization drops it as malformed.
	items := []*calendar.Event{{Status: "confirmed", Summary: "Broken"}}

	raws := gcal.Translate(items)
	gt.A(t, raws).Length(1)
	gt.V(t, raws[0].Timestamp.IsZero()).Equal(true)
}
