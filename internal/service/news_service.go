package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yasite/internal/db"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var (
	ErrNewsNotFound     = errors.New("news not found")
	ErrNewsTitleMissing = errors.New("news title is required")
	ErrNewsTextMissing  = errors.New("news text is required")
)

// DefaultHomeNewsCount 是首页展示的新闻数量上限。
const DefaultHomeNewsCount = 10

// NewsService provides read access to news and bulk fixture import.
type NewsService struct {
	db        *gorm.DB
	homeCount int
}

// NewsInput describes one news item in an import fixture.
type NewsInput struct {
	Title string    `yaml:"title"`
	Text  string    `yaml:"text"`
	Date  time.Time `yaml:"date"`
}

type newsFixture struct {
	News []NewsInput `yaml:"news"`
}

// NewNewsService creates a NewsService. A non-positive homeCount falls back to DefaultHomeNewsCount.
func NewNewsService(gdb *gorm.DB, homeCount int) *NewsService {
	if homeCount <= 0 {
		homeCount = DefaultHomeNewsCount
	}
	return &NewsService{db: gdb, homeCount: homeCount}
}

// HomeCount returns how many news the home page shows.
func (s *NewsService) HomeCount() int {
	return s.homeCount
}

// Home returns the freshest news with their comment counts.
func (s *NewsService) Home() ([]db.News, error) {
	var items []db.News
	if err := s.db.Model(&db.News{}).
		Select("news.*, (SELECT COUNT(*) FROM comments WHERE comments.news_id = news.id) AS comment_count").
		Order("news.date desc").
		Order("news.id desc").
		Limit(s.homeCount).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a news item by id.
func (s *NewsService) Get(id uint) (*db.News, error) {
	var news db.News
	if err := s.db.First(&news, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return &news, nil
}

// Comments lists comments of a news item from oldest to newest.
func (s *NewsService) Comments(newsID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.Preload("Author").
		Where("news_id = ?", newsID).
		Order("created asc").
		Order("id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Import 在单个事务中批量创建新闻。
func (s *NewsService) Import(items []NewsInput) ([]db.News, error) {
	records := make([]db.News, 0, len(items))
	for i, item := range items {
		title := strings.TrimSpace(item.Title)
		text := strings.TrimSpace(item.Text)
		if title == "" {
			return nil, fmt.Errorf("item %d: %w", i+1, ErrNewsTitleMissing)
		}
		if text == "" {
			return nil, fmt.Errorf("item %d: %w", i+1, ErrNewsTextMissing)
		}
		records = append(records, db.News{Title: title, Text: text, Date: item.Date})
	}

	if len(records) == 0 {
		return records, nil
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	}); err != nil {
		return nil, err
	}
	return records, nil
}

// ParseNewsFixture decodes a YAML document with a top-level "news" list.
func ParseNewsFixture(r io.Reader) ([]NewsInput, error) {
	var fixture newsFixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse news fixture: %w", err)
	}
	return fixture.News, nil
}
