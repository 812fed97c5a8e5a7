package github

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-github/v69/github"
	"github.com/m-mizutani/gt"

	"standup-report/internal/report"
)

const login = "someone"

func apiEvent(t *testing.T, eventType string, payload any, ts time.Time) *github.Event {
	t.Helper()
	data, err := json.Marshal(payload)
	gt.NoError(t, err)
	raw := json.RawMessage(data)
	return &github.Event{
		Type:       github.Ptr(eventType),
		Repo:       &github.Repository{Name: github.Ptr("acme/widgets")},
		CreatedAt:  &github.Timestamp{Time: ts},
		RawPayload: &raw,
	}
}

func TestTranslatePullRequest(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	pr := &github.PullRequest{
		Number:  github.Ptr(12),
		Title:   github.Ptr("Add widgets"),
		HTMLURL: github.Ptr("https://github.com/acme/widgets/pull/12"),
		User:    &github.User{Login: github.Ptr("other")},
	}

	t.Run("opened", func(t *testing.T) {
		ev := apiEvent(t, "PullRequestEvent", &github.PullRequestEvent{
			Action:      github.Ptr("opened"),
			PullRequest: pr,
		}, ts)

		raws := translate(ev, login)
		gt.A(t, raws).Length(1)
		gt.V(t, raws[0]).Equal(report.RawEvent{
			Origin:    "acme/widgets",
			Kind:      report.RawPullRequest,
			Action:    "opened",
			Title:     "#12 Add widgets",
			URL:       "https://github.com/acme/widgets/pull/12",
			Timestamp: ts,
		})
	})

	t.Run("closed and merged becomes merged", func(t *testing.T) {
		merged := *pr
		merged.Merged = github.Ptr(true)
		ev := apiEvent(t, "PullRequestEvent", &github.PullRequestEvent{
			Action:      github.Ptr("closed"),
			PullRequest: &merged,
		}, ts)

		raws := translate(ev, login)
		gt.A(t, raws).Length(1)
		gt.V(t, raws[0].Action).Equal("merged")
	})

	t.Run("closed without merge is dropped", func(t *testing.T) {
		ev := apiEvent(t, "PullRequestEvent", &github.PullRequestEvent{
			Action:      github.Ptr("closed"),
			PullRequest: pr,
		}, ts)

		gt.A(t, translate(ev, login)).Length(0)
	})
}

func TestTranslateReviewSkipsOwnPR(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	own := apiEvent(t, "PullRequestReviewEvent", &github.PullRequestReviewEvent{
		Action: github.Ptr("created"),
		PullRequest: &github.PullRequest{
			Number:  github.Ptr(12),
			Title:   github.Ptr("Add widgets"),
			HTMLURL: github.Ptr("https://github.com/acme/widgets/pull/12"),
			User:    &github.User{Login: github.Ptr(login)},
		},
	}, ts)
	gt.A(t, translate(own, login)).Length(0)

	theirs := apiEvent(t, "PullRequestReviewEvent", &github.PullRequestReviewEvent{
		Action: github.Ptr("created"),
		PullRequest: &github.PullRequest{
			Number:  github.Ptr(13),
			Title:   github.Ptr("Fix build"),
			HTMLURL: github.Ptr("https://github.com/acme/widgets/pull/13"),
			User:    &github.User{Login: github.Ptr("other")},
		},
	}, ts)
	raws := translate(theirs, login)
	gt.A(t, raws).Length(1)
	gt.V(t, raws[0].Kind).Equal(report.RawPullRequestReview)
	gt.V(t, raws[0].URL).Equal("https://github.com/acme/widgets/pull/13")
}

func TestTranslateIssueCommentKeyedByIssue(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ev := apiEvent(t, "IssueCommentEvent", &github.IssueCommentEvent{
		Action: github.Ptr("created"),
		Issue: &github.Issue{
			Number:  github.Ptr(3),
			Title:   github.Ptr("Crash on start"),
			HTMLURL: github.Ptr("https://github.com/acme/widgets/issues/3"),
		},
		Comment: &github.IssueComment{
			HTMLURL: github.Ptr("https://github.com/acme/widgets/issues/3#issuecomment-1"),
		},
	}, ts)

	raws := translate(ev, login)
	gt.A(t, raws).Length(1)
	gt.V(t, raws[0].Kind).Equal(report.RawIssueComment)
	// The issue URL, not the comment URL, so repeated comments merge.
	gt.V(t, raws[0].URL).Equal("https://github.com/acme/widgets/issues/3")
}

func TestTranslateUnknownEventType(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ev := apiEvent(t, "WatchEvent", &github.WatchEvent{Action: github.Ptr("started")}, ts)
	gt.A(t, translate(ev, login)).Length(0)
}
