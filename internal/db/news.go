package db

import (
	"time"

	"gorm.io/gorm"
)

// News is a read-only news item shown on the public site.
type News struct {
	ID           uint      `gorm:"primaryKey"`
	Title        string    `gorm:"size:250;not null"`
	Text         string    `gorm:"type:text;not null"`
	Date         time.Time `gorm:"index;not null"`
	Comments     []Comment `gorm:"constraint:OnDelete:CASCADE;"`
	CommentCount int64     `gorm:"->;-:migration"`
}

// TableName keeps the singular-looking "news" table name.
func (News) TableName() string {
	return "news"
}

// BeforeCreate 为未设置日期的新闻补充当天日期。
func (n *News) BeforeCreate(*gorm.DB) error {
	if n.Date.IsZero() {
		n.Date = Today()
	} else {
		n.Date = TruncateDay(n.Date)
	}
	return nil
}

// Today returns the current UTC date at midnight.
func Today() time.Time {
	return TruncateDay(time.Now())
}

// TruncateDay drops the clock part of t in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
