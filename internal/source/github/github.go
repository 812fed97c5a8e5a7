// Package github produces raw report events from the GitHub events API.
package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v69/github"
	"github.com/m-mizutani/goerr/v2"

	"standup-report/internal/report"
)

const maxPages = 10

// Source fetches the authenticated user's activity events.
type Source struct {
	client   *github.Client
	username string
}

// New builds a GitHub source. username may be empty, in which case the
// login of the token's owner is resolved on first fetch.
func New(token, username string) *Source {
	return &Source{
		client:   github.NewClient(nil).WithAuthToken(token),
		username: username,
	}
}

func (s *Source) Name() string { return "github" }

// Events pages through the user's activity feed, newest first, and stops as
// soon as an event older than the window shows up.
func (s *Source) Events(ctx context.Context, w report.Window) ([]report.RawEvent, error) {
	login := s.username
	if login == "" {
		u, _, err := s.client.Users.Get(ctx, "")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve authenticated user")
		}
		login = u.GetLogin()
	}

	var raws []report.RawEvent
	opts := &github.ListOptions{PerPage: 100}

	for page := 0; page < maxPages; page++ {
		events, resp, err := s.client.Activity.ListEventsPerformedByUser(ctx, login, false, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list user events", goerr.V("user", login))
		}

		for _, ev := range events {
			if ev.GetCreatedAt().Time.Before(w.Since) {
				return raws, nil
			}
			raws = append(raws, translate(ev, login)...)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	slog.Debug("fetched github events", "user", login, "count", len(raws))
	return raws, nil
}

// translate converts one API event into raw report events. Unknown event
// types yield nothing; the normalizer handles any leftover action labels.
func translate(ev *github.Event, login string) []report.RawEvent {
	payload, err := ev.ParsePayload()
	if err != nil {
		return nil
	}

	repo := ev.GetRepo().GetName()
	ts := ev.GetCreatedAt().Time

	switch p := payload.(type) {
	case *github.PullRequestEvent:
		pr := p.GetPullRequest()
		action := p.GetAction()
		if action == "closed" {
			if !pr.GetMerged() {
				return nil
			}
			action = "merged"
		}
		return []report.RawEvent{{
			Origin:    repo,
			Kind:      report.RawPullRequest,
			Action:    action,
			Title:     fmt.Sprintf("#%d %s", pr.GetNumber(), pr.GetTitle()),
			URL:       pr.GetHTMLURL(),
			Timestamp: ts,
		}}

	case *github.PullRequestReviewEvent:
		pr := p.GetPullRequest()
		// Reviewing your own PR is not review activity worth reporting.
		if pr.GetUser().GetLogin() == login {
			return nil
		}
		return []report.RawEvent{{
			Origin:    repo,
			Kind:      report.RawPullRequestReview,
			Action:    p.GetAction(),
			Title:     fmt.Sprintf("#%d %s", pr.GetNumber(), pr.GetTitle()),
			URL:       pr.GetHTMLURL(),
			Timestamp: ts,
		}}

	case *github.PullRequestReviewCommentEvent:
		pr := p.GetPullRequest()
		if pr.GetUser().GetLogin() == login {
			return nil
		}
		return []report.RawEvent{{
			Origin:    repo,
			Kind:      report.RawPullRequestRevComment,
			Action:    p.GetAction(),
			Title:     fmt.Sprintf("#%d %s", pr.GetNumber(), pr.GetTitle()),
			URL:       pr.GetHTMLURL(),
			Timestamp: ts,
		}}

	case *github.IssuesEvent:
		issue := p.GetIssue()
		return []report.RawEvent{{
			Origin:    repo,
			Kind:      report.RawIssue,
			Action:    p.GetAction(),
			Title:     fmt.Sprintf("#%d %s", issue.GetNumber(), issue.GetTitle()),
			URL:       issue.GetHTMLURL(),
			Timestamp: ts,
		}}

	case *github.IssueCommentEvent:
		issue := p.GetIssue()
		// Keyed by the issue URL so repeated comments on one issue
		// collapse into a single report item.
		return []report.RawEvent{{
			Origin:    repo,
			Kind:      report.RawIssueComment,
			Action:    p.GetAction(),
			Title:     fmt.Sprintf("#%d %s", issue.GetNumber(), issue.GetTitle()),
			URL:       issue.GetHTMLURL(),
			Timestamp: ts,
		}}
	}

	return nil
}
