package models

// DailyHabitScore is a derived read-only aggregate: the sum of contributing
// actions' levels for one calendar date plus the ids of the habits that
// contributed. Dates without activity are absent and imply a score of zero.
type DailyHabitScore struct {
	CompletedDate string  `json:"completed_date"`
	TotalScore    int     `json:"total_score"`
	HabitIDs      []int64 `json:"habit_ids"`
}
