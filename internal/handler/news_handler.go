package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/service"
)

// ShowNewsHome renders the freshest news.
func (a *API) ShowNewsHome(c *gin.Context) {
	items, err := a.news.Home()
	if err != nil {
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "news_home.html", gin.H{
		"title":       "Новости",
		"object_list": items,
	})
}

// ShowNewsDetail renders a news item with its comments; the comment form is only offered to signed-in users.
func (a *API) ShowNewsDetail(c *gin.Context) {
	news, ok := a.loadNews(c)
	if !ok {
		return
	}

	var form *service.CommentForm
	if currentUser(c) != nil {
		form = &service.CommentForm{Errors: service.FormErrors{}}
	}
	a.renderNewsDetail(c, http.StatusOK, news, form)
}

// CreateComment handles the comment form posted to the news detail page.
func (a *API) CreateComment(c *gin.Context) {
	news, ok := a.loadNews(c)
	if !ok {
		return
	}
	user := currentUser(c)

	form := &service.CommentForm{Text: c.PostForm("text")}
	comment, err := a.comments.Create(news.ID, user.ID, form)
	if err != nil {
		var formErrors service.FormErrors
		switch {
		case errors.As(err, &formErrors):
			a.formRejected("comment")
			a.renderNewsDetail(c, http.StatusOK, news, form)
		case errors.Is(err, service.ErrNewsNotFound):
			a.notFound(c)
		default:
			a.serverError(c, err)
		}
		return
	}

	a.logger.Info("comment created",
		slog.Uint64("comment_id", uint64(comment.ID)),
		slog.Uint64("news_id", uint64(news.ID)),
	)
	c.Redirect(http.StatusFound, commentsAnchor(news.ID))
}

// ShowCommentEdit renders the edit form for the author's own comment.
func (a *API) ShowCommentEdit(c *gin.Context) {
	comment, ok := a.loadOwnedComment(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "comment_edit.html", gin.H{
		"title":   "Редактирование комментария",
		"comment": comment,
		"form":    &service.CommentForm{Text: comment.Text, Errors: service.FormErrors{}},
	})
}

// UpdateComment saves the edited comment text.
func (a *API) UpdateComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.notFound(c)
		return
	}
	user := currentUser(c)

	form := &service.CommentForm{Text: c.PostForm("text")}
	comment, err := a.comments.Update(id, user.ID, form)
	if err != nil {
		var formErrors service.FormErrors
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			a.notFound(c)
		case errors.As(err, &formErrors):
			a.formRejected("comment")
			a.renderHTML(c, http.StatusOK, "comment_edit.html", gin.H{
				"title":   "Редактирование комментария",
				"comment": comment,
				"form":    form,
			})
		default:
			a.serverError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, commentsAnchor(comment.NewsID))
}

// ShowCommentDelete asks the author to confirm deletion.
func (a *API) ShowCommentDelete(c *gin.Context) {
	comment, ok := a.loadOwnedComment(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "comment_delete.html", gin.H{
		"title":   "Удаление комментария",
		"comment": comment,
	})
}

// DeleteComment removes the author's own comment.
func (a *API) DeleteComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.notFound(c)
		return
	}
	user := currentUser(c)

	comment, err := a.comments.Delete(id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	a.logger.Info("comment deleted", slog.Uint64("comment_id", uint64(comment.ID)))
	c.Redirect(http.StatusFound, commentsAnchor(comment.NewsID))
}

func (a *API) loadNews(c *gin.Context) (*db.News, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.notFound(c)
		return nil, false
	}

	news, err := a.news.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNewsNotFound) {
			a.notFound(c)
		} else {
			a.serverError(c, err)
		}
		return nil, false
	}
	return news, true
}

func (a *API) loadOwnedComment(c *gin.Context) (*db.Comment, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.notFound(c)
		return nil, false
	}

	comment, err := a.comments.GetOwned(id, currentUser(c).ID)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			a.notFound(c)
		} else {
			a.serverError(c, err)
		}
		return nil, false
	}
	return comment, true
}

func (a *API) renderNewsDetail(c *gin.Context, status int, news *db.News, form *service.CommentForm) {
	comments, err := a.news.Comments(news.ID)
	if err != nil {
		a.serverError(c, err)
		return
	}

	data := gin.H{
		"title":    news.Title,
		"news":     news,
		"comments": comments,
	}
	if form != nil {
		data["form"] = form
	}
	a.renderHTML(c, status, "news_detail.html", data)
}

func commentsAnchor(newsID uint) string {
	return fmt.Sprintf("/news/%d/#comments", newsID)
}
