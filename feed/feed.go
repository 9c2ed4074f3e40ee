// Package feed composes pages of habit records into date-grouped display
// groups and drives cursor-based "load more" pagination.
package feed

import (
	"time"

	"github.com/habitboard/habitboard/models"
)

// Group is one display section: all habits sharing a calendar date, in
// arrival order.
type Group struct {
	Date   string         `json:"date"`
	Label  string         `json:"label"`
	Habits []models.Habit `json:"habits"`
}

// GroupByDate partitions items by their effective date (completion date,
// falling back to creation date). Group order is first-seen insertion order,
// not a fresh date sort: the feed arrives completion-time descending from
// the query layer and the grouping preserves that arrival order.
func GroupByDate(items []models.Habit) []Group {
	index := map[string]int{}
	groups := []Group{}
	for _, item := range items {
		date := item.EffectiveDate()
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, Group{Date: date, Label: formatLabel(date)})
		}
		groups[i].Habits = append(groups[i].Habits, item)
	}
	return groups
}

// formatLabel renders "2 Jan 2006" style headers. An unparseable date falls
// back to the raw string.
func formatLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("2 Jan 2006")
}
