// Package report implements the aggregation engine behind the digest: raw
// source events are normalized into a canonical shape, deduplicated by
// (origin, url), grouped by origin and ordered deterministically. The
// engine performs no I/O and operates once per run on a fully materialized
// event batch.
package report

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrTagValidation marks caller-contract violations, e.g. an inverted
// time window.
var ErrTagValidation = goerr.NewTag("validation")

// Model is the final ordered, grouped, deduplicated report structure.
type Model struct {
	Groups []Group
}

// Empty reports whether the model contains no items at all.
func (m *Model) Empty() bool {
	return len(m.Groups) == 0
}

// Build runs the whole pipeline over a materialized batch of raw events.
// It fails only on an invalid window; anything wrong with individual
// events degrades to a smaller report instead of an error.
func Build(raw []RawEvent, w Window, opts Options) (*Model, error) {
	if !w.Since.Before(w.Until) {
		return nil, goerr.New("window since must be before until",
			goerr.V("since", w.Since),
			goerr.V("until", w.Until),
			goerr.T(ErrTagValidation),
		)
	}

	events := Normalize(raw, w, opts)
	items := Merge(events)
	groups := GroupItems(items)
	for i := range groups {
		groups[i] = SortGroup(groups[i])
	}

	return &Model{Groups: groups}, nil
}
