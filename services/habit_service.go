package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/habitboard/habitboard/models"
	"github.com/habitboard/habitboard/utils"
)

// PageSize is the feed window; callers never receive more items per call.
const PageSize = 20

// ErrHabitNotFound marks a detail lookup for a nonexistent id. Kept distinct
// from generic backend errors so the API can answer 404 instead of 500.
var ErrHabitNotFound = errors.New("habit not found")

// FeedPage is one window of the habit feed.
type FeedPage struct {
	Items   []models.Habit `json:"items"`
	HasMore bool           `json:"has_more"`
}

// HabitInput is one row of a batched create request.
type HabitInput struct {
	ActionID    uint      `json:"action_id"`
	Note        *string   `json:"note"`
	CompletedAt time.Time `json:"completed_at"`
}

// HabitService issues reads and writes for habit-completion records. All
// backend errors propagate with their message intact; there are no retries.
type HabitService struct {
	db *gorm.DB
}

// NewHabitService creates a HabitService on the given database handle.
func NewHabitService(db *gorm.DB) *HabitService {
	return &HabitService{db: db}
}

// GetHabitFeed reads one page of habit records joined to their action,
// filtered by action type, completed entries only, newest completion first.
// It probes one row beyond PageSize: a full probe means more pages exist, and
// the extra row is trimmed before returning.
func (s *HabitService) GetHabitFeed(ctx context.Context, actionType, offset int) (FeedPage, error) {
	var rows []models.Habit
	err := s.db.WithContext(ctx).
		Joins("JOIN actions ON actions.id = habits.action_id").
		Where("actions.type = ?", actionType).
		Where("habits.completed_at IS NOT NULL").
		Order("habits.completed_at DESC").
		Offset(offset).
		Limit(PageSize + 1).
		Preload("Action").
		Find(&rows).Error
	if err != nil {
		return FeedPage{}, err
	}

	hasMore := len(rows) > PageSize
	if hasMore {
		rows = rows[:PageSize]
	}
	return FeedPage{Items: rows, HasMore: hasMore}, nil
}

// scoreRow is the raw shape of the aggregation query.
type scoreRow struct {
	CompletedDate string
	TotalScore    int
	HabitIDs      string
}

// GetDailyHabitScores computes the per-day score aggregate for the year
// ending at startDate (YYYY-MM-DD): one row per date with activity, the sum
// of contributing actions' levels, and the contributing habit ids.
func (s *HabitService) GetDailyHabitScores(ctx context.Context, startDate string, actionType int) ([]models.DailyHabitScore, error) {
	end, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, err
	}
	windowStart := end.AddDate(-1, 0, 0)
	windowEnd := end.AddDate(0, 0, 1)

	var raw []scoreRow
	err = s.db.WithContext(ctx).Raw(`
		SELECT DATE(habits.completed_at) AS completed_date,
		       COALESCE(SUM(actions.level), 0) AS total_score,
		       GROUP_CONCAT(habits.id) AS habit_ids
		FROM habits
		JOIN actions ON actions.id = habits.action_id
		WHERE actions.type = ?
		  AND habits.completed_at IS NOT NULL
		  AND habits.completed_at >= ?
		  AND habits.completed_at < ?
		GROUP BY DATE(habits.completed_at)
		ORDER BY completed_date`,
		actionType, windowStart, windowEnd).Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	scores := make([]models.DailyHabitScore, 0, len(raw))
	for _, r := range raw {
		scores = append(scores, models.DailyHabitScore{
			// MySQL's DATE() can come back with a time suffix through the
			// generic scanner; keep the calendar date only.
			CompletedDate: firstN(r.CompletedDate, 10),
			TotalScore:    r.TotalScore,
			HabitIDs:      parseIDList(r.HabitIDs),
		})
	}
	return scores, nil
}

// GetHabitByID loads one habit with its joined action. A missing id returns
// ErrHabitNotFound.
func (s *HabitService) GetHabitByID(ctx context.Context, id uint) (*models.Habit, error) {
	var habit models.Habit
	err := s.db.WithContext(ctx).Preload("Action").First(&habit, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// CreateHabits inserts the rows as a single batch inside a transaction and
// returns the store-assigned ids. A failure on any row rolls back the whole
// batch; callers must not assume partial persistence. Notes are sanitized
// before insert.
func (s *HabitService) CreateHabits(ctx context.Context, inputs []HabitInput) ([]uint, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no habit rows to insert")
	}

	habits := make([]models.Habit, 0, len(inputs))
	for _, in := range inputs {
		completedAt := in.CompletedAt
		note := in.Note
		if note != nil {
			clean := utils.Sanitize(*note)
			note = &clean
		}
		habits = append(habits, models.Habit{
			ActionID:    in.ActionID,
			Note:        note,
			CompletedAt: &completedAt,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&habits).Error
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func parseIDList(raw string) []int64 {
	if raw == "" {
		return []int64{}
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		if id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
