// Package mood defines the fixed set of moods an entry can carry.
package mood

import (
	"fmt"
	"strings"
)

// Mood is one label from the fixed enumeration, emoji included
type Mood string

const (
	Happy   Mood = "🙂 Happy"
	Neutral Mood = "😐 Neutral"
	Sad     Mood = "😔 Sad"
	Angry   Mood = "😡 Angry"
	Anxious Mood = "😰 Anxious"
)

// FilterAll is the pass-through filter value
const FilterAll = "All"

var ordered = []Mood{Happy, Neutral, Sad, Angry, Anxious}

var colors = map[Mood]string{
	Happy:   "#F2B705",
	Neutral: "#8C8C8C",
	Sad:     "#3D7DD8",
	Angry:   "#D64541",
	Anxious: "#9B59B6",
}

// All returns every mood in display order
func All() []Mood {
	out := make([]Mood, len(ordered))
	copy(out, ordered)
	return out
}

// Valid reports whether m is part of the enumeration
func (m Mood) Valid() bool {
	_, ok := colors[m]
	return ok
}

// Emoji returns the leading emoji of the mood
func (m Mood) Emoji() string {
	emoji, _, _ := strings.Cut(string(m), " ")
	return emoji
}

// Label returns the mood name without its emoji
func (m Mood) Label() string {
	_, label, ok := strings.Cut(string(m), " ")
	if !ok {
		return string(m)
	}
	return label
}

// Color returns the display color as a hex string. Unknown moods are gray.
func (m Mood) Color() string {
	if c, ok := colors[m]; ok {
		return c
	}
	return "#8C8C8C"
}

func (m Mood) String() string {
	return string(m)
}

// Parse accepts either the exact mood value or its bare label, case-insensitive
func Parse(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	for _, m := range ordered {
		if s == string(m) || strings.EqualFold(s, m.Label()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q (must be one of: %s)", s, strings.Join(Labels(), ", "))
}

// ParseFilter is Parse with a pass-through: "" and "All" yield the zero Mood
func ParseFilter(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, FilterAll) {
		return "", nil
	}
	return Parse(s)
}

// Matches reports whether m passes filter. The zero filter matches everything.
func (m Mood) Matches(filter Mood) bool {
	return filter == "" || m == filter
}

// Labels returns the bare labels in display order
func Labels() []string {
	labels := make([]string, len(ordered))
	for i, m := range ordered {
		labels[i] = m.Label()
	}
	return labels
}
