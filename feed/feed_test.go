package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitboard/habitboard/models"
)

func habitAt(id uint, completed string) models.Habit {
	t, err := time.Parse(time.RFC3339, completed)
	if err != nil {
		panic(err)
	}
	return models.Habit{ID: id, CompletedAt: &t, CreatedAt: t}
}

func TestGroupByDatePreservesFirstSeenOrder(t *testing.T) {
	// Feed arrives completion-time descending; groups must keep that
	// arrival order, not re-sort by date.
	items := []models.Habit{
		habitAt(4, "2025-06-03T18:00:00Z"),
		habitAt(3, "2025-06-03T09:00:00Z"),
		habitAt(2, "2025-06-01T12:00:00Z"),
		habitAt(1, "2025-05-30T08:00:00Z"),
	}

	groups := GroupByDate(items)

	require.Len(t, groups, 3)
	assert.Equal(t, "2025-06-03", groups[0].Date)
	assert.Equal(t, "2025-06-01", groups[1].Date)
	assert.Equal(t, "2025-05-30", groups[2].Date)

	require.Len(t, groups[0].Habits, 2)
	assert.Equal(t, uint(4), groups[0].Habits[0].ID)
	assert.Equal(t, uint(3), groups[0].Habits[1].ID)
}

func TestGroupByDateInsertionOrderEvenWhenUnsorted(t *testing.T) {
	// Deliberately out-of-order input: insertion order wins over date order.
	items := []models.Habit{
		habitAt(1, "2025-06-01T12:00:00Z"),
		habitAt(2, "2025-06-03T12:00:00Z"),
		habitAt(3, "2025-06-01T13:00:00Z"),
	}

	groups := GroupByDate(items)

	require.Len(t, groups, 2)
	assert.Equal(t, "2025-06-01", groups[0].Date)
	assert.Equal(t, "2025-06-03", groups[1].Date)
	assert.Len(t, groups[0].Habits, 2)
}

func TestGroupByDateLabel(t *testing.T) {
	groups := GroupByDate([]models.Habit{habitAt(1, "2025-06-03T09:00:00Z")})
	require.Len(t, groups, 1)
	assert.Equal(t, "3 Jun 2025", groups[0].Label)
}

func TestGroupByDateFallsBackToCreatedAt(t *testing.T) {
	created, _ := time.Parse(time.RFC3339, "2025-06-05T10:00:00Z")
	items := []models.Habit{{ID: 7, CreatedAt: created}}

	groups := GroupByDate(items)

	require.Len(t, groups, 1)
	assert.Equal(t, "2025-06-05", groups[0].Date)
}

func TestGroupByDateEmpty(t *testing.T) {
	assert.Empty(t, GroupByDate(nil))
}
