package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// loginRedirectURL builds LoginURL?next=<target>. target is percent-encoded
// with "/" left as is and spaces as %20.
func loginRedirectURL(target string) string {
	escaped := url.QueryEscape(target)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return LoginURL + "?next=" + escaped
}

// safeNext 仅接受站内相对路径，避免开放重定向。
func safeNext(raw string) (string, bool) {
	next := strings.TrimSpace(raw)
	if next == "" || !strings.HasPrefix(next, "/") {
		return "", false
	}
	if strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "", false
	}
	parsed, err := url.Parse(next)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return "", false
	}
	return next, true
}
