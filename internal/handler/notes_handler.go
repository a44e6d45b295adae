package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/service"
)

// NotesSuccessURL is where every successful note mutation lands.
const NotesSuccessURL = "/done/"

// ShowNotesHome renders the public landing page.
func (a *API) ShowNotesHome(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "notes_home.html", gin.H{
		"title": "Заметки",
	})
}

// ListNotes renders the current user's notes only.
func (a *API) ListNotes(c *gin.Context) {
	notes, err := a.notes.List(currentUser(c).ID)
	if err != nil {
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "notes_list.html", gin.H{
		"title":       "Мои заметки",
		"object_list": notes,
	})
}

// ShowNoteAdd renders an empty note form.
func (a *API) ShowNoteAdd(c *gin.Context) {
	a.renderNoteForm(c, http.StatusOK, "Новая заметка", nil, &service.NoteForm{Errors: service.FormErrors{}})
}

// CreateNote stores a note written by the current user.
func (a *API) CreateNote(c *gin.Context) {
	form := noteFormFromRequest(c)
	note, err := a.notes.Create(currentUser(c).ID, form)
	if err != nil {
		var formErrors service.FormErrors
		if errors.As(err, &formErrors) {
			a.formRejected("note")
			a.renderNoteForm(c, http.StatusOK, "Новая заметка", nil, form)
			return
		}
		a.serverError(c, err)
		return
	}

	a.logger.Info("note created", slog.String("slug", note.Slug))
	c.Redirect(http.StatusFound, NotesSuccessURL)
}

// ShowNoteSuccess confirms a completed note operation.
func (a *API) ShowNoteSuccess(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "note_success.html", gin.H{
		"title": "Успешно",
	})
}

// ShowNoteDetail renders one of the current user's notes.
func (a *API) ShowNoteDetail(c *gin.Context) {
	note, ok := a.loadOwnedNote(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "note_detail.html", gin.H{
		"title": note.Title,
		"note":  note,
	})
}

// ShowNoteEdit renders the edit form pre-filled with the note.
func (a *API) ShowNoteEdit(c *gin.Context) {
	note, ok := a.loadOwnedNote(c)
	if !ok {
		return
	}
	a.renderNoteForm(c, http.StatusOK, "Редактирование заметки", note, service.NoteFormFrom(note))
}

// UpdateNote saves changes to one of the current user's notes.
func (a *API) UpdateNote(c *gin.Context) {
	form := noteFormFromRequest(c)
	note, err := a.notes.Update(c.Param("slug"), currentUser(c).ID, form)
	if err != nil {
		var formErrors service.FormErrors
		switch {
		case errors.Is(err, service.ErrNoteNotFound):
			a.notFound(c)
		case errors.As(err, &formErrors):
			a.formRejected("note")
			a.renderNoteForm(c, http.StatusOK, "Редактирование заметки", note, form)
		default:
			a.serverError(c, err)
		}
		return
	}

	a.logger.Info("note updated", slog.String("slug", note.Slug))
	c.Redirect(http.StatusFound, NotesSuccessURL)
}

// ShowNoteDelete asks the author to confirm deletion.
func (a *API) ShowNoteDelete(c *gin.Context) {
	note, ok := a.loadOwnedNote(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "note_delete.html", gin.H{
		"title": "Удаление заметки",
		"note":  note,
	})
}

// DeleteNote removes one of the current user's notes.
func (a *API) DeleteNote(c *gin.Context) {
	slug := c.Param("slug")
	if err := a.notes.Delete(slug, currentUser(c).ID); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	a.logger.Info("note deleted", slog.String("slug", slug))
	c.Redirect(http.StatusFound, NotesSuccessURL)
}

// loadOwnedNote 其他用户的笔记一律返回 404，而不是 403。
func (a *API) loadOwnedNote(c *gin.Context) (*db.Note, bool) {
	note, err := a.notes.GetOwned(c.Param("slug"), currentUser(c).ID)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			a.notFound(c)
		} else {
			a.serverError(c, err)
		}
		return nil, false
	}
	return note, true
}

func (a *API) renderNoteForm(c *gin.Context, status int, title string, note *db.Note, form *service.NoteForm) {
	data := gin.H{
		"title": title,
		"form":  form,
	}
	if note != nil {
		data["note"] = note
	}
	a.renderHTML(c, status, "note_form.html", data)
}

func noteFormFromRequest(c *gin.Context) *service.NoteForm {
	return &service.NoteForm{
		Title: c.PostForm("title"),
		Text:  c.PostForm("text"),
		Slug:  c.PostForm("slug"),
	}
}
