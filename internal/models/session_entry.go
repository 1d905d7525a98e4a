package models

import (
	"time"
)

// SessionEntry is one key of one browser session.
type SessionEntry struct {
	SessionID string     `gorm:"primaryKey;type:varchar(64)" json:"session_id"`
	Key       string     `gorm:"column:entry_key;primaryKey;type:varchar(64)" json:"key"`
	Value     string     `gorm:"type:text" json:"value"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Expired reports whether the entry is no longer valid at now.
func (e *SessionEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}
