package e2e

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/router"
	"github.com/yasite/internal/service"
	"gorm.io/gorm"
)

const e2ePassword = "e2e-secret-pass"

var csrfMetaPattern = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

type e2eSuite struct {
	gdb   *gorm.DB
	news  *httptest.Server
	notes *httptest.Server
}

type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })

	opts := router.Options{
		SessionSecret: "e2e-session-secret",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	newsEngine, err := router.SetupRouter(router.SiteNews, gdb, opts)
	if err != nil {
		t.Fatalf("failed to build news router: %v", err)
	}
	notesEngine, err := router.SetupRouter(router.SiteNotes, gdb, opts)
	if err != nil {
		t.Fatalf("failed to build notes router: %v", err)
	}

	s := &e2eSuite{
		gdb:   gdb,
		news:  httptest.NewServer(newsEngine),
		notes: httptest.NewServer(notesEngine),
	}
	t.Cleanup(s.news.Close)
	t.Cleanup(s.notes.Close)
	return s
}

// newBrowser 每个用户每个站点独立的 cookie jar，两个站点同主机不同端口。
func newBrowser(t *testing.T, server *httptest.Server) *browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &browser{
		t:    t,
		base: server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (int, string, string) {
	b.t.Helper()

	resp, err := b.client.Get(b.base + path)
	if err != nil {
		b.t.Fatalf("GET %s failed: %v", path, err)
	}
	return readResponse(b.t, resp)
}

// csrfToken 从登录页的 meta 标签读取当前会话的 CSRF 令牌。
func (b *browser) csrfToken() string {
	b.t.Helper()

	_, _, body := b.get("/auth/login/")
	match := csrfMetaPattern.FindStringSubmatch(body)
	if match == nil {
		b.t.Fatal("login page has no csrf token")
	}
	return match[1]
}

func (b *browser) post(path string, values url.Values) (int, string, string) {
	b.t.Helper()

	form := url.Values{}
	for key, value := range values {
		form[key] = value
	}
	form.Set("_csrf", b.csrfToken())

	resp, err := b.client.PostForm(b.base+path, form)
	if err != nil {
		b.t.Fatalf("POST %s failed: %v", path, err)
	}
	return readResponse(b.t, resp)
}

func readResponse(t *testing.T, resp *http.Response) (int, string, string) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func (b *browser) signupAndLogin(username string) {
	b.t.Helper()

	status, location, _ := b.post("/auth/signup/", url.Values{
		"username":  {username},
		"password1": {e2ePassword},
		"password2": {e2ePassword},
	})
	if status != http.StatusFound || location != "/auth/login/" {
		b.t.Fatalf("signup %s: expected redirect to login, got %d %q", username, status, location)
	}
	b.login(username)
}

func (b *browser) login(username string) {
	b.t.Helper()

	status, _, _ := b.post("/auth/login/", url.Values{
		"username": {username},
		"password": {e2ePassword},
	})
	if status != http.StatusFound {
		b.t.Fatalf("login %s: expected 302, got %d", username, status)
	}
}

func TestE2E_NotesFlow(t *testing.T) {
	suite := newE2ESuite(t)

	owner := newBrowser(t, suite.notes)
	owner.signupAndLogin("owner")

	status, location, _ := owner.post("/add/", url.Values{
		"title": {"Планы на неделю"},
		"text":  {"Купить **молоко**"},
	})
	if status != http.StatusFound || location != "/done/" {
		t.Fatalf("expected redirect to /done/, got %d %q", status, location)
	}

	var note db.Note
	if err := suite.gdb.First(&note).Error; err != nil {
		t.Fatalf("note not stored: %v", err)
	}
	if note.Slug == "" {
		t.Fatal("expected slug to be generated")
	}

	status, _, body := owner.get("/note/" + note.Slug + "/")
	if status != http.StatusOK || !strings.Contains(body, "<strong>молоко</strong>") {
		t.Fatalf("expected rendered note, got %d", status)
	}

	status, _, body = owner.post("/add/", url.Values{
		"title": {"Другая заметка"},
		"text":  {"текст"},
		"slug":  {note.Slug},
	})
	if status != http.StatusOK || !strings.Contains(body, "такой slug уже существует") {
		t.Fatalf("expected duplicate slug error, got %d", status)
	}

	stranger := newBrowser(t, suite.notes)
	stranger.signupAndLogin("stranger")
	for _, path := range []string{"/note/", "/edit/", "/delete/"} {
		if status, _, _ := stranger.get(path + note.Slug + "/"); status != http.StatusNotFound {
			t.Fatalf("expected 404 for stranger on %s, got %d", path, status)
		}
	}

	status, location, _ = owner.post("/delete/"+note.Slug+"/", url.Values{})
	if status != http.StatusFound || location != "/done/" {
		t.Fatalf("expected delete redirect, got %d %q", status, location)
	}

	status, _, _ = owner.post("/auth/logout/", url.Values{})
	if status != http.StatusOK {
		t.Fatalf("expected logout page, got %d", status)
	}
	if status, _, _ := owner.get("/notes/"); status != http.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", status)
	}
}

func TestE2E_NewsFlowSharesUsersWithNotes(t *testing.T) {
	suite := newE2ESuite(t)

	created, err := service.NewNewsService(suite.gdb, 0).Import([]service.NewsInput{
		{Title: "Главная новость", Text: "Текст новости"},
	})
	if err != nil {
		t.Fatalf("failed to import news: %v", err)
	}
	detail := "/news/" + strconv.FormatUint(uint64(created[0].ID), 10) + "/"

	// 在笔记站注册的用户可以直接登录新闻站
	newBrowser(t, suite.notes).signupAndLogin("commenter")
	reader := newBrowser(t, suite.news)
	reader.login("commenter")

	status, _, body := reader.get("/")
	if status != http.StatusOK || !strings.Contains(body, "Главная новость") {
		t.Fatalf("expected news on home page, got %d", status)
	}

	status, location, _ := reader.post(detail, url.Values{"text": {"Отличная новость"}})
	if status != http.StatusFound || location != detail+"#comments" {
		t.Fatalf("expected redirect to comments, got %d %q", status, location)
	}

	status, _, body = reader.post(detail, url.Values{"text": {"Ты негодяй"}})
	if status != http.StatusOK || !strings.Contains(body, service.Warning) {
		t.Fatalf("expected bad word warning, got %d", status)
	}

	var count int64
	suite.gdb.Model(&db.Comment{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one comment, got %d", count)
	}

	anonymous := newBrowser(t, suite.news)
	status, _, body = anonymous.get(detail)
	if status != http.StatusOK || !strings.Contains(body, "Отличная новость") {
		t.Fatalf("expected comment visible to anonymous, got %d", status)
	}

	status, location, _ = anonymous.post(detail, url.Values{"text": {"Аноним"}})
	if status != http.StatusFound || !strings.HasPrefix(location, "/auth/login/?next=") {
		t.Fatalf("expected anonymous redirect to login, got %d %q", status, location)
	}

	resp, err := reader.client.PostForm(suite.news.URL+detail, url.Values{"text": {"Без токена"}})
	if err != nil {
		t.Fatalf("POST %s failed: %v", detail, err)
	}
	if status, _, _ := readResponse(t, resp); status != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", status)
	}
}
