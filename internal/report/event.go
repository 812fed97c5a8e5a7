package report

import "time"

// Kind classifies a report item.
type Kind string

const (
	KindPullRequest Kind = "PR"
	KindIssue       Kind = "Issue"
	KindMeeting     Kind = "Meeting"
)

// Canonical actions. Everything a source reports is mapped onto this set
// during normalization; unknown labels are dropped.
const (
	ActionOpened    = "opened"
	ActionReviewed  = "reviewed"
	ActionCommented = "commented"
	ActionMerged    = "merged"
	ActionAttended  = "attended"
)

// Raw event kinds, the shared ingestion vocabulary produced by sources.
const (
	RawPullRequest           = "pull_request"
	RawPullRequestReview     = "pull_request_review"
	RawPullRequestRevComment = "pull_request_review_comment"
	RawIssue                 = "issue"
	RawIssueComment          = "issue_comment"
	RawMeeting               = "meeting"
)

// RawEvent is a single activity record as delivered by a source, before
// normalization. Kind and Action use the source-facing vocabulary above.
type RawEvent struct {
	Origin    string // repository path or calendar name
	Kind      string
	Action    string
	Title     string
	URL       string
	Timestamp time.Time
}

// Event is the canonical form of a RawEvent that survived normalization.
type Event struct {
	Origin    string
	Kind      Kind
	Action    string // one of the canonical actions
	Title     string
	URL       string
	Timestamp time.Time
}

// Window is the half-open interval [Since, Until) events must fall within.
type Window struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls within the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && t.Before(w.Until)
}

// Options controls normalization behavior.
type Options struct {
	// IncludeIssueComments accepts issue comment events during
	// normalization. When false they never reach the merger.
	IncludeIssueComments bool
}

// actionRank is the canonical priority used as a deterministic fallback
// when two events share a timestamp.
func actionRank(action string) int {
	switch action {
	case ActionOpened:
		return 0
	case ActionReviewed:
		return 1
	case ActionCommented:
		return 2
	case ActionMerged:
		return 3
	case ActionAttended:
		return 4
	default:
		return 5
	}
}
