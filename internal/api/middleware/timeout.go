package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SelectiveTimeoutConfig bounds every request's context. Paths starting with
// one of longPrefixes get longTimeout, everything else gets timeout.
func SelectiveTimeoutConfig(timeout, longTimeout time.Duration, longPrefixes ...string) echo.MiddlewareFunc {
	isLong := func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, prefix := range longPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	short := middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: isLong,
		Timeout: timeout,
	})
	long := middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: func(c echo.Context) bool { return !isLong(c) },
		Timeout: longTimeout,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return short(long(next))
	}
}
