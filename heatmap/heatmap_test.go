package heatmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitboard/habitboard/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComposeDenseSequenceCoversMondayAlignedYear(t *testing.T) {
	// 2025-06-18 is a Wednesday; start rolls back to Monday 2024-06-17.
	g := Compose(date(2025, time.June, 18), nil)

	require.NotEmpty(t, g.Days)
	assert.Equal(t, "2024-06-17", g.Days[0].Date)
	assert.Equal(t, "2025-06-18", g.Days[len(g.Days)-1].Date)
	assert.Equal(t, 367, len(g.Days))
	assert.NotZero(t, len(g.Days)%7, "mid-week end must not be a whole number of weeks")

	// Last column is the partial week Mon..Wed.
	assert.Equal(t, 53, len(g.Weeks))
	assert.Equal(t, 3, len(g.Weeks[52]))
}

func TestComposeSundayEndIsWholeWeeks(t *testing.T) {
	// 2025-06-15 is a Sunday: the final day of a Monday-first week.
	g := Compose(date(2025, time.June, 15), nil)

	assert.Equal(t, 371, len(g.Days))
	assert.Zero(t, len(g.Days)%7)
	for _, week := range g.Weeks {
		assert.Equal(t, 7, len(week))
	}
}

func TestComposeMondayTodayStartsAlignedWithoutExtraRollback(t *testing.T) {
	// 2025-06-16 is a Monday; start 2024-06-16 is a Sunday, aligned back to
	// Monday 2024-06-10.
	g := Compose(date(2025, time.June, 16), nil)

	assert.Equal(t, "2024-06-10", g.Days[0].Date)
	assert.Equal(t, 1, len(g.Weeks[len(g.Weeks)-1]), "final column holds only today")
}

func TestComposeScoresAndCounts(t *testing.T) {
	scores := []models.DailyHabitScore{
		{CompletedDate: "2025-06-01", TotalScore: 3, HabitIDs: []int64{1, 2, 3}},
		{CompletedDate: "2025-06-02", TotalScore: 100, HabitIDs: []int64{4}},
	}
	g := Compose(date(2025, time.June, 18), scores)

	byDate := map[string]Day{}
	for _, d := range g.Days {
		byDate[d.Date] = d
	}

	assert.Equal(t, 3, byDate["2025-06-01"].Score)
	assert.Equal(t, 3, byDate["2025-06-01"].HabitCount)
	assert.Equal(t, 3, byDate["2025-06-01"].Level)

	assert.Equal(t, 100, byDate["2025-06-02"].Score)
	assert.Equal(t, MaxLevel, byDate["2025-06-02"].Level, "scores above 6 clamp")

	assert.Equal(t, 0, byDate["2025-06-03"].Score, "absent dates default to zero")
	assert.Equal(t, 0, byDate["2025-06-03"].HabitCount)
	assert.Equal(t, 0, byDate["2025-06-03"].Level)
}

func TestLevelClamp(t *testing.T) {
	assert.Equal(t, 0, Level(0))
	assert.Equal(t, 5, Level(5))
	assert.Equal(t, 6, Level(6))
	assert.Equal(t, 6, Level(7))
	assert.Equal(t, 6, Level(100))
	assert.Equal(t, 0, Level(-1))
}

func TestComposeMonthLabels(t *testing.T) {
	g := Compose(date(2025, time.June, 18), nil)

	require.NotEmpty(t, g.MonthLabels)
	assert.Equal(t, 0, g.MonthLabels[0].Col)
	assert.Equal(t, "Jun", g.MonthLabels[0].Name)

	// A rolling year re-enters the starting month, so 13 boundaries appear.
	assert.Equal(t, 13, len(g.MonthLabels))

	// Label columns strictly increase and never repeat consecutively.
	for i := 1; i < len(g.MonthLabels); i++ {
		assert.Greater(t, g.MonthLabels[i].Col, g.MonthLabels[i-1].Col)
		assert.NotEqual(t, g.MonthLabels[i].Name, g.MonthLabels[i-1].Name)
	}
}

func TestComposeDeterministic(t *testing.T) {
	scores := []models.DailyHabitScore{
		{CompletedDate: "2025-01-15", TotalScore: 2, HabitIDs: []int64{9}},
	}
	a := Compose(date(2025, time.June, 18), scores)
	b := Compose(date(2025, time.June, 18), scores)
	assert.Equal(t, a, b)
}
