package db

import (
	"time"

	"gorm.io/gorm"
)

// Comment 是用户对新闻的评论，作者与所属新闻创建后不可更改。
type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	NewsID   uint      `gorm:"not null;index"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"autoCreateTime;index"`
	News     News
}

// BeforeCreate stores timestamps in UTC so that ordering by created stays chronological.
func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	c.Created = c.Created.UTC()
	return nil
}
