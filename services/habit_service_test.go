package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/habitboard/habitboard/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Action{}, &models.Habit{}))
	return db
}

func seedAction(t *testing.T, db *gorm.DB, name string, actionType, level int) models.Action {
	t.Helper()
	action := models.Action{Name: &name, Type: actionType, Level: &level}
	require.NoError(t, db.Create(&action).Error)
	return action
}

func seedHabit(t *testing.T, db *gorm.DB, actionID uint, completedAt time.Time) models.Habit {
	t.Helper()
	habit := models.Habit{ActionID: actionID, CompletedAt: &completedAt}
	require.NoError(t, db.Create(&habit).Error)
	return habit
}

func TestGetHabitFeedShortPage(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	action := seedAction(t, db, "Running", models.ActionTypeSports, 3)

	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedHabit(t, db, action.ID, base.Add(time.Duration(i)*time.Hour))
	}

	page, err := svc.GetHabitFeed(context.Background(), models.ActionTypeSports, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasMore)
	// Newest completion first.
	require.NotNil(t, page.Items[0].CompletedAt)
	assert.True(t, page.Items[0].CompletedAt.After(*page.Items[2].CompletedAt))
	// The joined action rides along.
	require.NotNil(t, page.Items[0].Action.Name)
	assert.Equal(t, "Running", *page.Items[0].Action.Name)
}

func TestGetHabitFeedProbeRowTrimmed(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	action := seedAction(t, db, "Reading", models.ActionTypeLearning, 2)

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < PageSize+1; i++ {
		seedHabit(t, db, action.ID, base.Add(time.Duration(i)*time.Hour))
	}

	first, err := svc.GetHabitFeed(context.Background(), models.ActionTypeLearning, 0)
	require.NoError(t, err)
	assert.Len(t, first.Items, PageSize)
	assert.True(t, first.HasMore)

	second, err := svc.GetHabitFeed(context.Background(), models.ActionTypeLearning, PageSize)
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)
}

func TestGetHabitFeedFiltersTypeAndIncomplete(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	sports := seedAction(t, db, "Swimming", models.ActionTypeSports, 4)
	learning := seedAction(t, db, "Writing", models.ActionTypeLearning, 2)

	when := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	seedHabit(t, db, sports.ID, when)
	seedHabit(t, db, learning.ID, when)
	// A row with no completion never appears in the feed.
	require.NoError(t, db.Create(&models.Habit{ActionID: sports.ID}).Error)

	page, err := svc.GetHabitFeed(context.Background(), models.ActionTypeSports, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, sports.ID, page.Items[0].ActionID)
}

func TestGetHabitFeedEmpty(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)

	page, err := svc.GetHabitFeed(context.Background(), models.ActionTypeBadHabit, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestGetDailyHabitScores(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	run := seedAction(t, db, "Running", models.ActionTypeSports, 3)
	swim := seedAction(t, db, "Swimming", models.ActionTypeSports, 4)
	read := seedAction(t, db, "Reading", models.ActionTypeLearning, 2)

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	h1 := seedHabit(t, db, run.ID, day.Add(8*time.Hour))
	h2 := seedHabit(t, db, swim.ID, day.Add(18*time.Hour))
	seedHabit(t, db, run.ID, day.AddDate(0, 0, 1).Add(7*time.Hour))
	// Different type: must not contribute.
	seedHabit(t, db, read.ID, day.Add(9*time.Hour))
	// Outside the one-year window: must not contribute.
	seedHabit(t, db, run.ID, day.AddDate(-2, 0, 0))

	scores, err := svc.GetDailyHabitScores(context.Background(), "2025-06-15", models.ActionTypeSports)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	assert.Equal(t, "2025-06-10", scores[0].CompletedDate)
	assert.Equal(t, 7, scores[0].TotalScore)
	assert.ElementsMatch(t, []int64{int64(h1.ID), int64(h2.ID)}, scores[0].HabitIDs)

	assert.Equal(t, "2025-06-11", scores[1].CompletedDate)
	assert.Equal(t, 3, scores[1].TotalScore)
}

func TestGetDailyHabitScoresBadDate(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)

	_, err := svc.GetDailyHabitScores(context.Background(), "not-a-date", models.ActionTypeSports)
	assert.Error(t, err)
}

func TestGetHabitByID(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	action := seedAction(t, db, "Running", models.ActionTypeSports, 3)
	habit := seedHabit(t, db, action.ID, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))

	got, err := svc.GetHabitByID(context.Background(), habit.ID)
	require.NoError(t, err)
	assert.Equal(t, habit.ID, got.ID)
	require.NotNil(t, got.Action.Name)
	assert.Equal(t, "Running", *got.Action.Name)

	_, err = svc.GetHabitByID(context.Background(), habit.ID+999)
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestCreateHabitsBatch(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	action := seedAction(t, db, "Running", models.ActionTypeSports, 3)

	note := "morning run"
	when := time.Date(2025, 6, 10, 7, 30, 0, 0, time.UTC)
	inputs := []HabitInput{
		{ActionID: action.ID, Note: &note, CompletedAt: when},
		{ActionID: action.ID, CompletedAt: when.Add(time.Hour)},
	}

	ids, err := svc.CreateHabits(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotZero(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])

	var count int64
	require.NoError(t, db.Model(&models.Habit{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateHabitsSanitizesNote(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	action := seedAction(t, db, "Running", models.ActionTypeSports, 3)

	note := `<script>alert("x")</script>ran 5k`
	ids, err := svc.CreateHabits(context.Background(), []HabitInput{
		{ActionID: action.ID, Note: &note, CompletedAt: time.Now()},
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	var habit models.Habit
	require.NoError(t, db.First(&habit, ids[0]).Error)
	require.NotNil(t, habit.Note)
	assert.NotContains(t, *habit.Note, "<script>")
	assert.Contains(t, *habit.Note, "ran 5k")
}

func TestCreateHabitsEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)

	_, err := svc.CreateHabits(context.Background(), nil)
	assert.Error(t, err)
}

func TestParseIDList(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 30}, parseIDList("1,2,30"))
	assert.Equal(t, []int64{7}, parseIDList(" 7 "))
	assert.Empty(t, parseIDList(""))
}

func TestFeedOffsetsWalkWholeSet(t *testing.T) {
	db := openTestDB(t)
	svc := NewHabitService(db)
	action := seedAction(t, db, "Running", models.ActionTypeSports, 3)

	total := PageSize*2 + 5
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < total; i++ {
		seedHabit(t, db, action.ID, base.Add(time.Duration(i)*time.Hour))
	}

	seen := 0
	offset := 0
	for {
		page, err := svc.GetHabitFeed(context.Background(), models.ActionTypeSports, offset)
		require.NoError(t, err)
		seen += len(page.Items)
		if !page.HasMore {
			break
		}
		offset += PageSize
		require.Less(t, offset, total+PageSize, fmt.Sprintf("pager ran away at offset %d", offset))
	}
	assert.Equal(t, total, seen)
}
