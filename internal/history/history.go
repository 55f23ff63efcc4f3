// Package history orders and groups journal entries for display.
package history

import (
	"sort"
	"time"

	"github.com/cldixon/moodjournal/internal/mood"
	"github.com/cldixon/moodjournal/internal/store"
)

// Group is the set of entries written on one calendar date
type Group struct {
	Date    time.Time
	Entries []*store.Entry
}

// Title formats the group date the way the history view shows it
func (g Group) Title() string {
	return g.Date.Format("Monday, January 2, 2006")
}

// Newest returns the entries matching filter, newest first. The zero
// filter matches everything. The input slice is not modified.
func Newest(entries []*store.Entry, filter mood.Mood) []*store.Entry {
	out := make([]*store.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Mood.Matches(filter) {
			out = append(out, entries[i])
		}
	}
	// Insertion order already matches time order; the stable sort only
	// matters for stores fed out-of-order timestamps
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// ByDate groups the filtered entries by the calendar date of their local
// timestamp. Dates run newest first, as do the entries within each date.
func ByDate(entries []*store.Entry, filter mood.Mood) []Group {
	var groups []Group
	for _, e := range Newest(entries, filter) {
		day := dateOf(e.Timestamp)
		if n := len(groups); n > 0 && groups[n-1].Date.Equal(day) {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, Group{Date: day, Entries: []*store.Entry{e}})
	}
	return groups
}

// Count returns the number of entries per mood
func Count(entries []*store.Entry) map[mood.Mood]int {
	counts := make(map[mood.Mood]int, len(mood.All()))
	for _, e := range entries {
		counts[e.Mood]++
	}
	return counts
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
