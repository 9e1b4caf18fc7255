package domain

import "time"

// Link is a single stored bookmark with its metadata.
type Link struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID      int64     `gorm:"column:user_id;not null;index" json:"-"`
	URL         string    `gorm:"column:url;not null" json:"url"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	Tags        *string   `gorm:"column:tags" json:"tags,omitempty"`
	Category    *string   `gorm:"column:category" json:"category,omitempty"`
	IsPrivate   bool      `gorm:"column:is_private;default:false" json:"is_private"`
	IsFavorite  bool      `gorm:"column:is_favorite;default:false" json:"is_favorite"`
	IsLocked    bool      `gorm:"column:is_locked;default:false" json:"is_locked"`
	AccessCount int64     `gorm:"column:access_count;default:0" json:"access_count"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Username is the owner's name, populated only for public and admin
	// views. It is never stored on the links table.
	Username string `gorm:"-" json:"username,omitempty"`
}

// TableName returns the table name for GORM.
func (Link) TableName() string {
	return "links"
}

// EffectiveCategory returns the link's category, or "uncategorized" when
// the category is absent or empty.
func (l *Link) EffectiveCategory() string {
	if l.Category == nil || *l.Category == "" {
		return "uncategorized"
	}
	return *l.Category
}

// DateKey returns the calendar-date bucket key for the link.
func (l *Link) DateKey() string {
	return l.CreatedAt.Format("2006-01-02")
}
