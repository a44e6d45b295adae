package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/service"
	"gorm.io/gorm"
)

const (
	// LoginURL is where anonymous users are sent by LoginRequired.
	LoginURL = "/auth/login/"

	currentUserContextKey = "__current_user"
)

// Options tunes an API instance for one of the sites.
type Options struct {
	Site          string
	SiteName      string
	LoginRedirect string
	HomeNewsCount int
	Logger        *slog.Logger
	Metrics       FormMetrics
	// CSRF 为 true 时模板会拿到 csrf_token，需与 csrf 中间件一起启用。
	CSRF          bool
}

// FormMetrics counts forms rejected by validation.
type FormMetrics interface {
	RecordFormRejected(form string)
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	users         *service.UserService
	news          *service.NewsService
	comments      *service.CommentService
	notes         *service.NoteService
	site          string
	siteName      string
	loginRedirect string
	logger        *slog.Logger
	metrics       FormMetrics
	csrf          bool
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loginRedirect := strings.TrimSpace(opts.LoginRedirect)
	if loginRedirect == "" {
		loginRedirect = "/"
	}

	return &API{
		users:         service.NewUserService(gdb),
		news:          service.NewNewsService(gdb, opts.HomeNewsCount),
		comments:      service.NewCommentService(gdb),
		notes:         service.NewNoteService(gdb),
		site:          strings.TrimSpace(opts.Site),
		siteName:      strings.TrimSpace(opts.SiteName),
		loginRedirect: loginRedirect,
		logger:        logger,
		metrics:       opts.Metrics,
		csrf:          opts.CSRF,
	}
}

// renderHTML 在向模板渲染时自动附加站点名称与当前用户。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = a.site
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["user"]; !exists {
		if user := currentUser(c); user != nil {
			payload["user"] = user
		}
	}

	if a.csrf {
		payload["csrf_token"] = csrf.GetToken(c)
	}

	c.HTML(status, template, payload)
}

func (a *API) formRejected(form string) {
	if a.metrics != nil {
		a.metrics.RecordFormRejected(form)
	}
}

func (a *API) notFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{"title": "Страница не найдена"})
	c.Abort()
}

func (a *API) serverError(c *gin.Context, err error) {
	c.Error(err)
	a.logger.Error("request failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	c.String(http.StatusInternalServerError, "Internal Server Error")
	c.Abort()
}

// CSRFFailure rejects a form post whose token is missing or stale.
func (a *API) CSRFFailure(c *gin.Context) {
	a.logger.Warn("csrf verification failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)
	a.formRejected("csrf")
	a.renderHTML(c, http.StatusForbidden, "403.html", gin.H{"title": "Доступ запрещён"})
	c.Abort()
}

// NotFound renders the 404 page for unmatched routes.
func (a *API) NotFound(c *gin.Context) {
	a.notFound(c)
}

func currentUser(c *gin.Context) *db.User {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*db.User)
	if !ok {
		return nil
	}
	return user
}
