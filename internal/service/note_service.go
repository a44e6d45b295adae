package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yasite/internal/db"
	"gorm.io/gorm"
)

var ErrNoteNotFound = errors.New("note not found")

const (
	// NoteTitleMaxLength limits note titles.
	NoteTitleMaxLength = 100

	// SlugWarning is appended to a duplicate slug in the form error.
	SlugWarning = " - такой slug уже существует, придумайте уникальное значение!"

	msgSlugInvalid     = "Введите правильный «слаг», состоящий из латинских букв, цифр, знаков подчеркивания или дефисов."
	msgSlugUnavailable = "Не удалось получить slug из заголовка, укажите его вручную."
)

// NoteForm carries the add/edit note fields and their validation errors.
type NoteForm struct {
	Title  string
	Text   string
	Slug   string
	Errors FormErrors
}

// NoteFormFrom pre-fills a form with an existing note.
func NoteFormFrom(note *db.Note) *NoteForm {
	return &NoteForm{Title: note.Title, Text: note.Text, Slug: note.Slug, Errors: FormErrors{}}
}

// SlugExistsMessage builds the duplicate slug error for slug.
func SlugExistsMessage(slug string) string {
	return slug + SlugWarning
}

func (f *NoteForm) validateFields() {
	f.Errors = FormErrors{}
	f.Title = strings.TrimSpace(f.Title)
	f.Text = strings.TrimSpace(f.Text)
	f.Slug = strings.TrimSpace(f.Slug)

	if f.Title == "" {
		f.Errors.Add("title", msgRequired)
	} else if utf8.RuneCountInString(f.Title) > NoteTitleMaxLength {
		f.Errors.Add("title", maxLengthMessage(NoteTitleMaxLength))
	}

	if f.Text == "" {
		f.Errors.Add("text", msgRequired)
	}

	if f.Slug == "" {
		if f.Title == "" {
			return
		}
		f.Slug = Slugify(f.Title)
		if f.Slug == "" {
			f.Errors.Add("slug", msgSlugUnavailable)
		}
		return
	}

	if utf8.RuneCountInString(f.Slug) > NoteSlugMaxLength {
		f.Errors.Add("slug", maxLengthMessage(NoteSlugMaxLength))
	} else if !ValidSlug(f.Slug) {
		f.Errors.Add("slug", msgSlugInvalid)
	}
}

// NoteService wraps note operations. Every lookup is scoped to the author.
type NoteService struct {
	db *gorm.DB
}

// NewNoteService creates a NoteService instance.
func NewNoteService(gdb *gorm.DB) *NoteService {
	return &NoteService{db: gdb}
}

// List returns the notes written by authorID in creation order.
func (s *NoteService) List(authorID uint) ([]db.Note, error) {
	var notes []db.Note
	if err := s.db.Preload("Author").
		Where("author_id = ?", authorID).
		Order("id asc").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// GetOwned fetches a note by slug only if authorID wrote it.
// Foreign notes are reported as ErrNoteNotFound.
func (s *NoteService) GetOwned(slug string, authorID uint) (*db.Note, error) {
	var note db.Note
	if err := s.db.Preload("Author").
		Where("slug = ? AND author_id = ?", slug, authorID).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

// Create validates the form and stores a note owned by authorID.
func (s *NoteService) Create(authorID uint, form *NoteForm) (*db.Note, error) {
	if err := s.validate(form, 0); err != nil {
		return nil, err
	}

	note := db.Note{Title: form.Title, Text: form.Text, Slug: form.Slug, AuthorID: authorID}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// Update applies the form to an owned note. The author never changes.
func (s *NoteService) Update(slug string, authorID uint, form *NoteForm) (*db.Note, error) {
	note, err := s.GetOwned(slug, authorID)
	if err != nil {
		return nil, err
	}

	if err := s.validate(form, note.ID); err != nil {
		return note, err
	}

	if err := s.db.Model(&db.Note{}).Where("id = ?", note.ID).Updates(map[string]interface{}{
		"title": form.Title,
		"text":  form.Text,
		"slug":  form.Slug,
	}).Error; err != nil {
		return nil, err
	}

	note.Title = form.Title
	note.Text = form.Text
	note.Slug = form.Slug
	return note, nil
}

// Delete removes an owned note.
func (s *NoteService) Delete(slug string, authorID uint) error {
	note, err := s.GetOwned(slug, authorID)
	if err != nil {
		return err
	}
	return s.db.Delete(&db.Note{}, note.ID).Error
}

// validate 执行字段校验并检查 slug 唯一性（编辑时排除自身）。
func (s *NoteService) validate(form *NoteForm, excludeID uint) error {
	form.validateFields()

	if form.Slug != "" && !form.Errors.Has("slug") {
		query := s.db.Model(&db.Note{}).Where("slug = ?", form.Slug)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			form.Errors.Add("slug", SlugExistsMessage(form.Slug))
		}
	}

	if !form.Errors.Empty() {
		return form.Errors
	}
	return nil
}
