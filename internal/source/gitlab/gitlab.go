// Package gitlab produces raw report events from the GitLab contribution
// events API.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"standup-report/internal/report"
)

// Source fetches the token owner's contribution events.
type Source struct {
	client *gitlab.Client

	// projects caches project lookups; contribution events only carry a
	// numeric project ID.
	projects map[int]*gitlab.Project
}

// New builds a GitLab source. baseURL may be empty for gitlab.com.
func New(token, baseURL string) (*Source, error) {
	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gitlab client")
	}
	return &Source{client: client, projects: make(map[int]*gitlab.Project)}, nil
}

func (s *Source) Name() string { return "gitlab" }

func (s *Source) Events(ctx context.Context, w report.Window) ([]report.RawEvent, error) {
	// The API filters by date only, one day of slack on both sides; the
	// engine applies the precise window afterwards.
	after := gitlab.ISOTime(w.Since.AddDate(0, 0, -1))
	before := gitlab.ISOTime(w.Until.AddDate(0, 0, 1))

	opt := &gitlab.ListContributionEventsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
		After:       &after,
		Before:      &before,
	}

	var raws []report.RawEvent
	for {
		events, resp, err := s.client.Events.ListCurrentUserContributionEvents(opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list contribution events")
		}

		for _, ev := range events {
			proj, err := s.project(ctx, int(ev.ProjectID))
			if err != nil {
				slog.Debug("skipping event with unresolvable project",
					"project_id", ev.ProjectID, "error", err)
				continue
			}
			raws = append(raws, translate(ev, proj)...)
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	slog.Debug("fetched gitlab events", "count", len(raws))
	return raws, nil
}

func (s *Source) project(ctx context.Context, id int) (*gitlab.Project, error) {
	if p, ok := s.projects[id]; ok {
		return p, nil
	}
	p, _, err := s.client.Projects.GetProject(id, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve project", goerr.V("project_id", id))
	}
	s.projects[id] = p
	return p, nil
}

// translate converts one contribution event into raw report events, using
// the shared GitHub-style vocabulary. GitLab-only action names are mapped
// where an equivalent exists and passed through otherwise, leaving the
// normalizer to drop what it does not recognize.
func translate(ev *gitlab.ContributionEvent, proj *gitlab.Project) []report.RawEvent {
	if ev.CreatedAt == nil {
		return nil
	}
	ts := *ev.CreatedAt

	switch {
	case ev.TargetType == "MergeRequest":
		kind := report.RawPullRequest
		action := ev.ActionName
		switch ev.ActionName {
		case "accepted", "merged":
			action = "merged"
		case "approved":
			kind = report.RawPullRequestReview
			action = "submitted"
		}
		return []report.RawEvent{{
			Origin:    proj.PathWithNamespace,
			Kind:      kind,
			Action:    action,
			Title:     fmt.Sprintf("!%d %s", ev.TargetIID, ev.TargetTitle),
			URL:       fmt.Sprintf("%s/-/merge_requests/%d", proj.WebURL, ev.TargetIID),
			Timestamp: ts,
		}}

	case ev.TargetType == "Issue":
		return []report.RawEvent{{
			Origin:    proj.PathWithNamespace,
			Kind:      report.RawIssue,
			Action:    ev.ActionName,
			Title:     fmt.Sprintf("#%d %s", ev.TargetIID, ev.TargetTitle),
			URL:       fmt.Sprintf("%s/-/issues/%d", proj.WebURL, ev.TargetIID),
			Timestamp: ts,
		}}

	case ev.Note != nil:
		switch ev.Note.NoteableType {
		case "MergeRequest":
			return []report.RawEvent{{
				Origin:    proj.PathWithNamespace,
				Kind:      report.RawPullRequestRevComment,
				Action:    "created",
				Title:     fmt.Sprintf("!%d %s", ev.Note.NoteableIID, ev.TargetTitle),
				URL:       fmt.Sprintf("%s/-/merge_requests/%d", proj.WebURL, ev.Note.NoteableIID),
				Timestamp: ts,
			}}
		case "Issue":
			return []report.RawEvent{{
				Origin:    proj.PathWithNamespace,
				Kind:      report.RawIssueComment,
				Action:    "created",
				Title:     fmt.Sprintf("#%d %s", ev.Note.NoteableIID, ev.TargetTitle),
				URL:       fmt.Sprintf("%s/-/issues/%d", proj.WebURL, ev.Note.NoteableIID),
				Timestamp: ts,
			}}
		}
	}

	return nil
}
