package middleware

import (
	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
)

// MatchedRoute returns the registered route template of the request, "" when
// no route matched.
// See: https://github.com/labstack/echo/pull/1502/files
func MatchedRoute(ctx echo.Context) string {
	pathx := ctx.Path()
	for _, r := range ctx.Echo().Routes() {
		if pathx == r.Path {
			return r.Path
		}
	}
	return ""
}

// WrapMiddlewareWithSkipper runs m only when skip returns false.
func WrapMiddlewareWithSkipper(m echo.MiddlewareFunc, skip echo_middleware.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withMiddleware := m(next)
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			return withMiddleware(c)
		}
	}
}

// SkipMiddleware skips the liveness and metrics endpoints.
func SkipMiddleware(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == "/ping" || path == "/ping/" || path == "/metrics" || path == "/metrics/"
}
