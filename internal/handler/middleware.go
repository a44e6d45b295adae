package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// RequestIDHeader carries the per-request identifier.
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey = "__request_id"
	limiterIdleTTL      = 10 * time.Minute
)

// RequestLogger assigns a request id and logs every request once it completes.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set(requestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
		}
		if user := currentUser(c); user != nil {
			attrs = append(attrs, slog.String("username", user.Username))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request completed", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("request completed", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginRateLimiter throttles login attempts per client IP.
type LoginRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
	logger   *slog.Logger
}

// NewLoginRateLimiter allows perMinute attempts per IP. perMinute <= 0 disables limiting.
func NewLoginRateLimiter(perMinute int, logger *slog.Logger) *LoginRateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := &LoginRateLimiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
		logger:   logger,
	}
	if perMinute > 0 {
		limiter.limit = rate.Every(time.Minute / time.Duration(perMinute))
		limiter.burst = perMinute
	}
	return limiter
}

// Allow reports whether ip may make another attempt now.
func (l *LoginRateLimiter) Allow(ip string) bool {
	if l.burst == 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, key)
		}
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429.
func (l *LoginRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			l.logger.Warn("login rate limit exceeded", slog.String("remote_addr", ip))
			c.String(http.StatusTooManyRequests, "Слишком много попыток входа. Попробуйте позже.")
			c.Abort()
			return
		}
		c.Next()
	}
}
