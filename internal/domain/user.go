package domain

import "time"

// User represents an account that owns links.
type User struct {
	ID           int64     `gorm:"primaryKey;column:id" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex;not null" json:"username"`
	PasswordHash *string   `gorm:"column:password_hash" json:"-"`
	GoogleID     *string   `gorm:"column:google_id;uniqueIndex" json:"-"`
	Email        *string   `gorm:"column:email" json:"email,omitempty"`
	IsAdmin      bool      `gorm:"column:is_admin;default:false" json:"isAdmin"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Links []Link `gorm:"foreignKey:UserID" json:"links,omitempty"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
