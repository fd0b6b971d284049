// Package dday computes signed day counts between today and anniversaries, milestones and events.
package dday

import (
	"fmt"
	"sort"
	"time"
)

const (
	TypeAnniversary = "anniversary"
	TypeEvent       = "event"

	// MaxEvents caps the upcoming events merged into the list.
	MaxEvents = 10
)

// Milestones are day offsets from the anniversary.
var Milestones = []int{100, 200, 300, 365, 500, 730, 1000, 1095}

// Entry is one countdown. Days is negative for dates in the past.
type Entry struct {
	Title string    `json:"title"`
	Date  time.Time `json:"-"`
	Days  int       `json:"dday"`
	Type  string    `json:"type"`
}

// Event is the slice of a calendar event the calculator needs.
type Event struct {
	Title string
	Start time.Time
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Between returns the number of calendar days from a to b.
func Between(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

func milestoneTitle(days int) string {
	switch days {
	case 365:
		return "1st anniversary"
	case 730:
		return "2nd anniversary"
	case 1095:
		return "3rd anniversary"
	}
	return fmt.Sprintf("%d days", days)
}

// Build lists the anniversary itself, the milestones falling on or after today and at most
// MaxEvents events, ordered by Days ascending. anniversary may be nil.
func Build(today time.Time, anniversary *time.Time, events []Event) []Entry {
	today = Day(today)
	var out []Entry

	if anniversary != nil {
		start := Day(*anniversary)
		out = append(out, Entry{Title: "Day we met", Date: start, Days: -Between(start, today), Type: TypeAnniversary})

		for _, n := range Milestones {
			target := start.AddDate(0, 0, n)
			if target.Before(today) {
				continue
			}
			out = append(out, Entry{Title: milestoneTitle(n), Date: target, Days: Between(today, target), Type: TypeAnniversary})
		}
	}

	if len(events) > MaxEvents {
		events = events[:MaxEvents]
	}
	for _, e := range events {
		d := Day(e.Start)
		out = append(out, Entry{Title: e.Title, Date: d, Days: Between(today, d), Type: TypeEvent})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Days < out[j].Days })
	return out
}
