// Package heatmap turns sparse per-day score aggregates into a dense,
// week-columned calendar grid covering the year ending today. The composer is
// pure: given the same reference day and aggregates it always produces the
// same grid, and it is re-run wholesale whenever the inputs change.
package heatmap

import (
	"time"

	"github.com/habitboard/habitboard/models"
)

// MaxLevel is the top visual intensity bucket; scores clamp to it.
const MaxLevel = 6

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Day is one cell of the grid.
type Day struct {
	Date       string `json:"date"`
	Score      int    `json:"score"`
	HabitCount int    `json:"habit_count"`
	Level      int    `json:"level"`
}

// MonthLabel marks the week column where a new month begins.
type MonthLabel struct {
	Col  int    `json:"col"`
	Name string `json:"name"`
}

// Graph is the composed grid: the dense day sequence, the same days grouped
// into Monday-first week columns, and month labels per column index.
type Graph struct {
	Days        []Day        `json:"days"`
	Weeks       [][]Day      `json:"weeks"`
	MonthLabels []MonthLabel `json:"month_labels"`
}

// Level maps a day's score to its display bucket: min(score, MaxLevel).
func Level(score int) int {
	if score > MaxLevel {
		return MaxLevel
	}
	if score < 0 {
		return 0
	}
	return score
}

// isoWeekday returns Monday=0 .. Sunday=6.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Compose builds the grid for the year ending at today. The walk starts at
// the most recent Monday at or before today minus one year, so the first
// column is always a full Monday-aligned week.
func Compose(today time.Time, scores []models.DailyHabitScore) Graph {
	type agg struct {
		score int
		count int
	}
	byDate := make(map[string]agg, len(scores))
	for _, s := range scores {
		byDate[s.CompletedDate] = agg{score: s.TotalScore, count: len(s.HabitIDs)}
	}

	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	start := end.AddDate(-1, 0, 0)
	start = start.AddDate(0, 0, -isoWeekday(start))

	var days []Day
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, 1) {
		date := cursor.Format("2006-01-02")
		entry := byDate[date]
		days = append(days, Day{
			Date:       date,
			Score:      entry.score,
			HabitCount: entry.count,
			Level:      Level(entry.score),
		})
	}

	// Week columns split on Mondays. The first column is Monday-aligned by
	// construction of start.
	var weeks [][]Day
	var current []Day
	cursor := start
	for _, day := range days {
		if isoWeekday(cursor) == 0 && len(current) > 0 {
			weeks = append(weeks, current)
			current = nil
		}
		current = append(current, day)
		cursor = cursor.AddDate(0, 0, 1)
	}
	if len(current) > 0 {
		weeks = append(weeks, current)
	}

	// A label is emitted whenever a column's first day enters a new month.
	// Short months spanning less than a full week can be mislabeled; accepted
	// display approximation.
	var labels []MonthLabel
	lastMonth := -1
	colStart := start
	for col := range weeks {
		month := int(colStart.Month()) - 1
		if month != lastMonth {
			labels = append(labels, MonthLabel{Col: col, Name: monthNames[month]})
			lastMonth = month
		}
		colStart = colStart.AddDate(0, 0, len(weeks[col]))
	}

	return Graph{Days: days, Weeks: weeks, MonthLabels: labels}
}
