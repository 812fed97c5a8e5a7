package report

import "log/slog"

type kindAction struct {
	kind   string
	action string
}

type canonical struct {
	kind   Kind
	action string
}

// vocabulary maps the raw (kind, action) pairs sources emit onto the
// canonical event shape. Pairs not listed here are dropped during
// normalization so new upstream event types never break a report.
var vocabulary = map[kindAction]canonical{
	{RawPullRequest, "opened"}:            {KindPullRequest, ActionOpened},
	{RawPullRequest, "reopened"}:          {KindPullRequest, ActionOpened},
	{RawPullRequest, "merged"}:            {KindPullRequest, ActionMerged},
	{RawPullRequestReview, "submitted"}:   {KindPullRequest, ActionReviewed},
	{RawPullRequestReview, "created"}:     {KindPullRequest, ActionReviewed},
	{RawPullRequestRevComment, "created"}: {KindPullRequest, ActionReviewed},
	{RawIssue, "opened"}:                  {KindIssue, ActionOpened},
	{RawIssue, "created"}:                 {KindIssue, ActionOpened},
	{RawIssueComment, "created"}:          {KindIssue, ActionCommented},
	{RawMeeting, "confirmed"}:             {KindMeeting, ActionAttended},
	{RawMeeting, "attended"}:              {KindMeeting, ActionAttended},
}

// Normalize converts raw source events into canonical events, keeping only
// those inside the window. Malformed or unrecognized events are dropped,
// never surfaced as errors; drop counts are logged at debug level.
func Normalize(raw []RawEvent, w Window, opts Options) []Event {
	events := make([]Event, 0, len(raw))

	var droppedMalformed, droppedOutside, droppedUnknown, droppedGated int
	for _, r := range raw {
		if r.Timestamp.IsZero() || r.Title == "" {
			droppedMalformed++
			continue
		}
		if !w.Contains(r.Timestamp) {
			droppedOutside++
			continue
		}
		c, ok := vocabulary[kindAction{r.Kind, r.Action}]
		if !ok {
			droppedUnknown++
			continue
		}
		if !opts.IncludeIssueComments && c.kind == KindIssue && c.action == ActionCommented {
			droppedGated++
			continue
		}
		events = append(events, Event{
			Origin:    r.Origin,
			Kind:      c.kind,
			Action:    c.action,
			Title:     r.Title,
			URL:       r.URL,
			Timestamp: r.Timestamp,
		})
	}

	if n := droppedMalformed + droppedOutside + droppedUnknown + droppedGated; n > 0 {
		slog.Debug("dropped raw events during normalization",
			"malformed", droppedMalformed,
			"outside_window", droppedOutside,
			"unrecognized", droppedUnknown,
			"issue_comments_gated", droppedGated,
		)
	}

	return events
}
