package db

// Note is a personal note visible only to its author.
type Note struct {
	ID       uint   `gorm:"primaryKey"`
	Title    string `gorm:"size:100;not null"`
	Text     string `gorm:"type:text;not null"`
	Slug     string `gorm:"size:100;uniqueIndex;not null"`
	AuthorID uint   `gorm:"not null;index"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}
