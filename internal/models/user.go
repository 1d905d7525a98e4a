package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType represents the type of user
type UserType string

const (
	UserTypeAdmin  UserType = "Admin"
	UserTypeMember UserType = "Member"
)

// User represents an account that can sign in
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Username     string   `gorm:"type:varchar(255);uniqueIndex" json:"username"`
	Email        string   `gorm:"type:varchar(255)" json:"email"`
	FirebaseUID  string   `gorm:"type:varchar(128);index" json:"firebase_uid,omitempty"`
	PasswordHash string   `gorm:"type:varchar(255)" json:"-"`
	UserType     UserType `gorm:"type:varchar(20);default:'Member'" json:"user_type"`
}
