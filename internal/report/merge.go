package report

import (
	"sort"
	"time"
)

// Item is one deduplicated entry of the final report. Actions is an ordered
// set: insertion order follows the timestamp of each action's first
// occurrence, and no label appears twice. Timestamp is the latest
// contributing event's timestamp.
type Item struct {
	Origin    string
	Kind      Kind
	Title     string
	URL       string
	Actions   []string
	Timestamp time.Time
}

func (it *Item) hasAction(action string) bool {
	for _, a := range it.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// mergeKey identifies the item an event contributes to. Events with a URL
// share an item per (origin, url); events without one merge only when
// origin, title and timestamp are all identical.
func mergeKey(origin, url, title string, ts time.Time) string {
	if url != "" {
		return origin + "\x00" + url
	}
	return origin + "\x00\x00" + title + "\x00" + ts.Format(time.RFC3339Nano)
}

// Merge folds events referencing the same underlying item into one Item.
//
// Events are first put into a canonical order (timestamp, then action
// priority, then URL/title) so the result is a pure function of the input
// multiset: two runs over the same events in any order produce the same
// items, the same action ordering, and the same first-seen sequence.
func Merge(events []Event) []Item {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if ra, rb := actionRank(a.Action), actionRank(b.Action); ra != rb {
			return ra < rb
		}
		if a.URL != b.URL {
			return a.URL < b.URL
		}
		return a.Title < b.Title
	})

	byKey := make(map[string]*Item)
	var order []string

	for _, e := range sorted {
		key := mergeKey(e.Origin, e.URL, e.Title, e.Timestamp)
		it, ok := byKey[key]
		if !ok {
			it = &Item{
				Origin: e.Origin,
				Kind:   e.Kind,
				Title:  e.Title,
				URL:    e.URL,
			}
			byKey[key] = it
			order = append(order, key)
		}
		if !it.hasAction(e.Action) {
			it.Actions = append(it.Actions, e.Action)
		}
		if e.Timestamp.After(it.Timestamp) {
			it.Timestamp = e.Timestamp
		}
	}

	items := make([]Item, 0, len(order))
	for _, key := range order {
		items = append(items, *byKey[key])
	}
	return items
}
