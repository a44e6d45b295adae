package router

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"
	"github.com/yasite/internal/handler"
	"github.com/yasite/internal/metrics"
	"github.com/yasite/web"
	"gorm.io/gorm"
)

const (
	// SiteNews serves news and comments.
	SiteNews = "news"
	// SiteNotes serves personal notes.
	SiteNotes = "notes"

	sessionMaxAge = 14 * 24 * 60 * 60
)

// Options configures a site router.
type Options struct {
	SessionSecret      string
	SecureCookies      bool
	HomeNewsCount      int
	LoginRatePerMinute int
	Logger             *slog.Logger
	// SkipCSRFCheck 关闭表单 CSRF 校验，仅供进程内测试客户端使用。
	SkipCSRFCheck      bool
}

// SetupNewsRouter 配置新闻站点的 Gin 引擎和路由
func SetupNewsRouter(gdb *gorm.DB, opts Options) *gin.Engine {
	r, api := newEngine(gdb, opts, handler.Options{
		Site:          SiteNews,
		SiteName:      "YaNews",
		LoginRedirect: "/",
		HomeNewsCount: opts.HomeNewsCount,
	})

	r.GET("/", api.ShowNewsHome)
	r.GET("/news/:id/", api.ShowNewsDetail)
	r.POST("/news/:id/", api.LoginRequired(), api.CreateComment)

	auth := r.Group("")
	auth.Use(api.LoginRequired())
	{
		auth.GET("/edit_comment/:id/", api.ShowCommentEdit)
		auth.POST("/edit_comment/:id/", api.UpdateComment)
		auth.GET("/delete_comment/:id/", api.ShowCommentDelete)
		auth.POST("/delete_comment/:id/", api.DeleteComment)
	}

	return r
}

// SetupNotesRouter 配置笔记站点的 Gin 引擎和路由
func SetupNotesRouter(gdb *gorm.DB, opts Options) *gin.Engine {
	r, api := newEngine(gdb, opts, handler.Options{
		Site:          SiteNotes,
		SiteName:      "YaNote",
		LoginRedirect: "/notes/",
	})

	r.GET("/", api.ShowNotesHome)

	auth := r.Group("")
	auth.Use(api.LoginRequired())
	{
		auth.GET("/notes/", api.ListNotes)
		auth.GET("/add/", api.ShowNoteAdd)
		auth.POST("/add/", api.CreateNote)
		auth.GET("/done/", api.ShowNoteSuccess)
		auth.GET("/note/:slug/", api.ShowNoteDetail)
		auth.GET("/edit/:slug/", api.ShowNoteEdit)
		auth.POST("/edit/:slug/", api.UpdateNote)
		auth.GET("/delete/:slug/", api.ShowNoteDelete)
		auth.POST("/delete/:slug/", api.DeleteNote)
	}

	return r
}

// SetupRouter picks the router for site.
func SetupRouter(site string, gdb *gorm.DB, opts Options) (*gin.Engine, error) {
	switch strings.ToLower(strings.TrimSpace(site)) {
	case SiteNews:
		return SetupNewsRouter(gdb, opts), nil
	case SiteNotes:
		return SetupNotesRouter(gdb, opts), nil
	default:
		return nil, fmt.Errorf("unknown site %q", site)
	}
}

// newEngine 构建两个站点共享的中间件、模板与认证路由。
func newEngine(gdb *gorm.DB, opts Options, apiOpts handler.Options) (*gin.Engine, *handler.API) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("site", apiOpts.Site))

	siteMetrics := metrics.New(apiOpts.Site)
	apiOpts.Logger = logger
	apiOpts.Metrics = siteMetrics
	apiOpts.CSRF = !opts.SkipCSRFCheck
	api := handler.NewAPI(gdb, apiOpts)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestLogger(logger))
	r.Use(siteMetrics.Middleware())

	// 配置会话中间件
	secret := strings.TrimSpace(opts.SessionSecret)
	if secret == "" {
		secret = "yasite-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("yasite_session", store))
	if apiOpts.CSRF {
		r.Use(csrf.Middleware(csrf.Options{
			Secret:    secret,
			ErrorFunc: api.CSRFFailure,
		}))
	}
	r.Use(api.CurrentUser())

	// 加载模板并添加自定义函数
	r.SetHTMLTemplate(template.Must(web.Templates(TemplateFuncs())))

	r.GET("/metrics", gin.WrapH(siteMetrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := handler.NewLoginRateLimiter(opts.LoginRatePerMinute, logger)
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/login/", api.ShowLoginPage)
		authGroup.POST("/login/", limiter.Middleware(), api.Login)
		authGroup.GET("/logout/", api.Logout)
		authGroup.POST("/logout/", api.Logout)
		authGroup.GET("/signup/", api.ShowSignupPage)
		authGroup.POST("/signup/", api.Signup)
	}

	r.NoRoute(api.NotFound)

	return r, api
}

// TemplateFuncs returns the helpers available to every page.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": handler.Markdown,
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02.01.2006")
		},
		"timeSince": func(t time.Time) string {
			return formatRelativeTime(time.Now(), t)
		},
		"truncate": truncateRunes,
	}
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "…"
}

// formatRelativeTime 以俄语描述 t 距 now 的时间。
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	diff := now.Sub(t)
	if diff < time.Minute {
		return "только что"
	}

	minutes := int(diff / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%d %s назад", minutes, pluralRu(minutes, "минуту", "минуты", "минут"))
	}

	hours := int(diff / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("%d %s назад", hours, pluralRu(hours, "час", "часа", "часов"))
	}

	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d %s назад", days, pluralRu(days, "день", "дня", "дней"))
	}

	if days < 365 {
		months := days / 30
		return fmt.Sprintf("%d %s назад", months, pluralRu(months, "месяц", "месяца", "месяцев"))
	}

	years := days / 365
	return fmt.Sprintf("%d %s назад", years, pluralRu(years, "год", "года", "лет"))
}

func pluralRu(n int, one, few, many string) string {
	mod10 := n % 10
	mod100 := n % 100
	switch {
	case mod10 == 1 && mod100 != 11:
		return one
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return few
	default:
		return many
	}
}
