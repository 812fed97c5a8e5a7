package report_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"standup-report/internal/report"
)

var groupBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func item(origin string, kind report.Kind, title, url string, ts time.Time) report.Item {
	return report.Item{
		Origin:    origin,
		Kind:      kind,
		Title:     title,
		URL:       url,
		Actions:   []string{report.ActionOpened},
		Timestamp: ts,
	}
}

func TestGroupItemsFirstSeenOrder(t *testing.T) {
	items := []report.Item{
		item("acme/gadgets", report.KindPullRequest, "#2 B", "https://example.com/2", groupBase),
		item("acme/widgets", report.KindIssue, "#1 A", "https://example.com/1", groupBase.Add(time.Hour)),
		item("acme/gadgets", report.KindPullRequest, "#3 C", "https://example.com/3", groupBase.Add(2*time.Hour)),
	}

	groups := report.GroupItems(items)
	gt.A(t, groups).Length(2)
	gt.V(t, groups[0].Origin).Equal("acme/gadgets")
	gt.A(t, groups[0].Items).Length(2)
	gt.V(t, groups[1].Origin).Equal("acme/widgets")
	gt.A(t, groups[1].Items).Length(1)
}

func TestGroupItemsMeetingsFirst(t *testing.T) {
	items := []report.Item{
		item("acme/widgets", report.KindPullRequest, "#1 A", "https://example.com/1", groupBase),
		{
			Origin: report.MeetingsOrigin, Kind: report.KindMeeting, Title: "Standup",
			Actions: []string{report.ActionAttended}, Timestamp: groupBase.Add(time.Hour),
		},
	}

	groups := report.GroupItems(items)
	gt.A(t, groups).Length(2)
	gt.V(t, groups[0].Origin).Equal(report.MeetingsOrigin)
	gt.V(t, groups[1].Origin).Equal("acme/widgets")
}

func TestGroupItemsEmpty(t *testing.T) {
	gt.A(t, report.GroupItems(nil)).Length(0)
}

func TestSortGroupByTimestamp(t *testing.T) {
	g := report.Group{
		Origin: "acme/widgets",
		Items: []report.Item{
			item("acme/widgets", report.KindPullRequest, "#2 later", "https://example.com/2", groupBase.Add(time.Hour)),
			item("acme/widgets", report.KindPullRequest, "#1 earlier", "https://example.com/1", groupBase),
		},
	}

	sorted := report.SortGroup(g)
	gt.V(t, sorted.Items[0].Title).Equal("#1 earlier")
	gt.V(t, sorted.Items[1].Title).Equal("#2 later")
}

func TestSortGroupTieBreak(t *testing.T) {
	// Equal timestamps order by URL, or by title when URLs are absent.
	g := report.Group{
		Origin: "acme/widgets",
		Items: []report.Item{
			item("acme/widgets", report.KindPullRequest, "#9 z", "https://example.com/b", groupBase),
			item("acme/widgets", report.KindPullRequest, "#8 a", "https://example.com/a", groupBase),
		},
	}
	sorted := report.SortGroup(g)
	gt.V(t, sorted.Items[0].URL).Equal("https://example.com/a")
	gt.V(t, sorted.Items[1].URL).Equal("https://example.com/b")

	m := report.Group{
		Origin: report.MeetingsOrigin,
		Items: []report.Item{
			item(report.MeetingsOrigin, report.KindMeeting, "Standup", "", groupBase),
			item(report.MeetingsOrigin, report.KindMeeting, "1:1", "", groupBase),
		},
	}
	sorted = report.SortGroup(m)
	gt.V(t, sorted.Items[0].Title).Equal("1:1")
	gt.V(t, sorted.Items[1].Title).Equal("Standup")
}
