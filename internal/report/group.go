package report

import "sort"

// MeetingsOrigin is the synthetic origin collecting all meeting items.
// When non-empty it is always the first group of the report.
const MeetingsOrigin = "meetings"

// Group is one origin's slice of the report.
type Group struct {
	Origin string
	Items  []Item
}

// GroupItems partitions merged items by origin. Meeting items all land in
// the synthetic meetings group, emitted first when non-empty. Remaining
// groups appear in first-seen order of the item sequence. Origins with no
// items produce no group.
func GroupItems(items []Item) []Group {
	var meetings []Item
	byOrigin := make(map[string][]Item)
	var order []string

	for _, it := range items {
		if it.Kind == KindMeeting {
			meetings = append(meetings, it)
			continue
		}
		if _, ok := byOrigin[it.Origin]; !ok {
			order = append(order, it.Origin)
		}
		byOrigin[it.Origin] = append(byOrigin[it.Origin], it)
	}

	groups := make([]Group, 0, len(order)+1)
	if len(meetings) > 0 {
		groups = append(groups, Group{Origin: MeetingsOrigin, Items: meetings})
	}
	for _, origin := range order {
		groups = append(groups, Group{Origin: origin, Items: byOrigin[origin]})
	}
	return groups
}

// SortGroup orders a group's items by timestamp ascending, breaking ties by
// URL, or title for URL-less items, so the order is total and reproducible.
func SortGroup(g Group) Group {
	sort.SliceStable(g.Items, func(i, j int) bool {
		a, b := g.Items[i], g.Items[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return tieKey(a) < tieKey(b)
	})
	return g
}

func tieKey(it Item) string {
	if it.URL != "" {
		return it.URL
	}
	return it.Title
}
