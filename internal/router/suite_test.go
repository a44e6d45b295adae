package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/require"
	"github.com/yasite/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testBaseURL  = "http://testserver"
	testPassword = "correct-horse-battery"
)

// recordingRender 记录最近一次渲染的模板名与上下文，并继续交给真实模板渲染。
type recordingRender struct {
	inner render.HTMLRender

	mu   sync.Mutex
	name string
	data gin.H
}

func (r *recordingRender) Instance(name string, data interface{}) render.Render {
	r.mu.Lock()
	r.name = name
	r.data, _ = data.(gin.H)
	r.mu.Unlock()
	return r.inner.Instance(name, data)
}

func (r *recordingRender) reset() {
	r.mu.Lock()
	r.name = ""
	r.data = nil
	r.mu.Unlock()
}

func (r *recordingRender) context() gin.H {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) *http.Response {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp
}

func (c *localClient) Get(path string) *http.Response {
	return c.Do(httptest.NewRequest(http.MethodGet, testBaseURL+path, nil))
}

func (c *localClient) PostForm(path string, values url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, testBaseURL+path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

type siteSuite struct {
	gdb    *gorm.DB
	engine *gin.Engine
	render *recordingRender

	author db.User
	reader db.User

	anon         *localClient
	authorClient *localClient
	readerClient *localClient
}

func setupRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() { db.Close(gdb) })
	return gdb
}

func newSiteSuite(t *testing.T, site string, opts Options) *siteSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := setupRouterTestDB(t)
	// 与进程内测试客户端一样跳过 CSRF，校验本身见 csrf_test.go
	opts.SkipCSRFCheck = true
	if opts.SessionSecret == "" {
		opts.SessionSecret = "test-secret"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	engine, err := SetupRouter(site, gdb, opts)
	require.NoError(t, err)

	recorder := &recordingRender{inner: engine.HTMLRender}
	engine.HTMLRender = recorder

	s := &siteSuite{
		gdb:    gdb,
		engine: engine,
		render: recorder,
		anon:   newLocalClient(engine),
	}
	s.author = s.createUser(t, "Автор")
	s.reader = s.createUser(t, "Читатель")
	s.authorClient = s.login(t, s.author.Username)
	s.readerClient = s.login(t, s.reader.Username)
	return s
}

func (s *siteSuite) createUser(t *testing.T, username string) db.User {
	t.Helper()

	hashed, err := db.HashPassword(testPassword)
	require.NoError(t, err)

	user := db.User{Username: username, Password: hashed}
	require.NoError(t, s.gdb.Create(&user).Error)
	return user
}

func (s *siteSuite) login(t *testing.T, username string) *localClient {
	t.Helper()

	client := newLocalClient(s.engine)
	resp := client.PostForm("/auth/login/", url.Values{
		"username": {username},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode, "login should redirect")
	return client
}

// get 发起请求并返回响应与本次渲染的模板上下文。
func (s *siteSuite) get(client *localClient, path string) (*http.Response, gin.H) {
	s.render.reset()
	resp := client.Get(path)
	return resp, s.render.context()
}

func (s *siteSuite) post(client *localClient, path string, values url.Values) (*http.Response, gin.H) {
	s.render.reset()
	resp := client.PostForm(path, values)
	return resp, s.render.context()
}

func loginRedirect(path string) string {
	return "/auth/login/?next=" + path
}
