package service

import (
	"errors"
	"strings"

	"github.com/yasite/internal/db"
	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

// BadWords 评论中不允许出现的词，匹配时忽略大小写。
var BadWords = []string{"редиска", "негодяй"}

// Warning is the field error shown when a comment contains a bad word.
const Warning = "Не ругайтесь!"

// CommentForm carries the comment text and its validation errors.
type CommentForm struct {
	Text   string
	Errors FormErrors
}

// Validate trims the text and checks it against BadWords.
func (f *CommentForm) Validate() bool {
	f.Errors = FormErrors{}
	f.Text = strings.TrimSpace(f.Text)

	if f.Text == "" {
		f.Errors.Add("text", msgRequired)
		return false
	}
	if ContainsBadWord(f.Text) {
		f.Errors.Add("text", Warning)
		return false
	}
	return true
}

// ContainsBadWord reports whether text contains any entry of BadWords.
func ContainsBadWord(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range BadWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// CommentService wraps comment mutations. Every mutation is scoped to the author.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Create validates the form and stores a comment on newsID by authorID.
func (s *CommentService) Create(newsID, authorID uint, form *CommentForm) (*db.Comment, error) {
	if !form.Validate() {
		return nil, form.Errors
	}

	var count int64
	if err := s.db.Model(&db.News{}).Where("id = ?", newsID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNewsNotFound
	}

	comment := db.Comment{NewsID: newsID, AuthorID: authorID, Text: form.Text}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetOwned fetches a comment only if authorID wrote it.
// Foreign comments are reported as ErrCommentNotFound.
func (s *CommentService) GetOwned(id, authorID uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.Where("id = ? AND author_id = ?", id, authorID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// Update changes the text of an owned comment. Author and news stay as they were.
func (s *CommentService) Update(id, authorID uint, form *CommentForm) (*db.Comment, error) {
	comment, err := s.GetOwned(id, authorID)
	if err != nil {
		return nil, err
	}

	if !form.Validate() {
		return comment, form.Errors
	}

	if err := s.db.Model(comment).Update("text", form.Text).Error; err != nil {
		return nil, err
	}
	comment.Text = form.Text
	return comment, nil
}

// Delete removes an owned comment and returns the deleted record.
func (s *CommentService) Delete(id, authorID uint) (*db.Comment, error) {
	comment, err := s.GetOwned(id, authorID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(&db.Comment{}, comment.ID).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
