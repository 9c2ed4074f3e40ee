package models

import "time"

// Habit is one logged occurrence of an Action. CompletedAt is when the user
// says they performed it, distinct from CreatedAt which is when the row was
// written. Habits are never updated or deleted once logged.
type Habit struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ActionID    uint       `gorm:"index;not null" json:"action_id"`
	Note        *string    `gorm:"type:text" json:"note"`
	CompletedAt *time.Time `gorm:"index" json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Action      Action     `json:"action"`
}

// EffectiveDate returns the calendar date (YYYY-MM-DD) the habit belongs to:
// the completion date, falling back to the creation date when completion is
// absent.
func (h Habit) EffectiveDate() string {
	if h.CompletedAt != nil {
		return h.CompletedAt.Format("2006-01-02")
	}
	return h.CreatedAt.Format("2006-01-02")
}
