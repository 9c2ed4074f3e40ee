package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// User is a first-party identity used to issue session tokens. Passwords are
// stored as bcrypt hashes only. Roles holds a JSON object mapping a resource
// name to a role name (plus an optional "_global" override) and is embedded
// verbatim as the user_roles claim of issued tokens.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Roles        string         `gorm:"type:text" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoleMap decodes the Roles column. A missing or malformed value yields an
// empty map rather than an error; tokens issued from it simply carry no roles.
func (u User) RoleMap() map[string]string {
	roles := map[string]string{}
	if u.Roles == "" {
		return roles
	}
	if err := json.Unmarshal([]byte(u.Roles), &roles); err != nil {
		return map[string]string{}
	}
	return roles
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
