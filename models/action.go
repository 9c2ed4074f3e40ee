package models

// Action types group the catalog into the three trackable categories.
const (
	ActionTypeSports   = 1
	ActionTypeBadHabit = 2
	ActionTypeLearning = 3
)

// ActionTypeLabels maps an action type to its display name.
var ActionTypeLabels = map[int]string{
	ActionTypeSports:   "Sports",
	ActionTypeBadHabit: "Bad Habits",
	ActionTypeLearning: "Learning",
}

// Action is a catalog entry describing a loggable recurring behavior.
// Rows are created and updated by backend administration only; the
// application reads them and caches the full set.
type Action struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        *string `gorm:"size:255" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Type        int     `gorm:"not null;index" json:"type"`
	Level       *int    `json:"level"`
}

// ValidActionType reports whether t is one of the known categories.
func ValidActionType(t int) bool {
	return t == ActionTypeSports || t == ActionTypeBadHabit || t == ActionTypeLearning
}
