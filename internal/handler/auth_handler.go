package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yasite/internal/service"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Вход",
		"form":  &service.LoginForm{Errors: service.FormErrors{}},
		"next":  c.Query("next"),
	})
}

// Login 处理用户登录请求
func (a *API) Login(c *gin.Context) {
	form := &service.LoginForm{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	user, err := a.users.Authenticate(form)
	if err != nil {
		var formErrors service.FormErrors
		if errors.Is(err, service.ErrInvalidCredentials) || errors.As(err, &formErrors) {
			a.formRejected("login")
			a.renderHTML(c, http.StatusOK, "login.html", gin.H{
				"title": "Вход",
				"form":  form,
				"next":  next,
			})
			return
		}
		a.serverError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		a.serverError(c, err)
		return
	}

	a.logger.Info("user logged in", slog.String("username", user.Username))

	target := a.loginRedirect
	if safe, ok := safeNext(next); ok {
		target = safe
	}
	c.Redirect(http.StatusFound, target)
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.serverError(c, err)
		return
	}
	c.Set(currentUserContextKey, nil)

	a.renderHTML(c, http.StatusOK, "logged_out.html", gin.H{
		"title": "Выход",
		"user":  nil,
	})
}

// ShowSignupPage renders the registration form.
func (a *API) ShowSignupPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "signup.html", gin.H{
		"title": "Регистрация",
		"form":  &service.SignupForm{Errors: service.FormErrors{}},
	})
}

// Signup registers a new account and sends the user to the login page.
func (a *API) Signup(c *gin.Context) {
	form := &service.SignupForm{
		Username:  c.PostForm("username"),
		Password1: c.PostForm("password1"),
		Password2: c.PostForm("password2"),
	}

	user, err := a.users.Register(form)
	if err != nil {
		var formErrors service.FormErrors
		if errors.As(err, &formErrors) {
			a.formRejected("signup")
			a.renderHTML(c, http.StatusOK, "signup.html", gin.H{
				"title": "Регистрация",
				"form":  form,
			})
			return
		}
		a.serverError(c, err)
		return
	}

	a.logger.Info("user registered", slog.String("username", user.Username))
	c.Redirect(http.StatusFound, LoginURL)
}

// CurrentUser 从会话中加载当前用户；会话指向的用户不存在时清空会话。
func (a *API) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(sessionUserIDKey)
		if raw == nil {
			c.Next()
			return
		}

		userID, ok := raw.(uint)
		if !ok {
			session.Clear()
			_ = session.Save()
			c.Next()
			return
		}

		user, err := a.users.Get(userID)
		if err != nil {
			if !errors.Is(err, service.ErrUserNotFound) {
				a.serverError(c, err)
				return
			}
			session.Clear()
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(currentUserContextKey, user)
		c.Next()
	}
}

// LoginRequired 未登录时重定向到登录页，并携带 next 参数。
func (a *API) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusFound, loginRedirectURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}
