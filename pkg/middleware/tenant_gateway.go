package middleware

import (
	"context"
	"errors"
	"net/http"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
)

// TenantGateway runs every request, WebSocket upgrades included, through the
// tenant gateway. Plain requests run inside the bound schema context. A
// WebSocket connection keeps the tenant it was accepted with until it
// closes, without holding a pooled connection. Errors returned by the
// handler are passed on untouched; pipeline failures become generic client
// errors.
func TenantGateway(gw *tenancy.Gateway, skipper echo_middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echo_middleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			req := c.Request()
			serve := gw.Serve
			if c.IsWebSocket() {
				serve = gw.ServeStream
			}
			err := serve(req.Context(), tenancy.HostSourceFromRequest(req), func(ctx context.Context) error {
				c.SetRequest(req.WithContext(ctx))
				return next(c)
			})
			if err == nil {
				return nil
			}
			var stageErr *tenancy.StageError
			if errors.As(err, &stageErr) && stageErr.Stage == tenancy.StageDispatched {
				return stageErr.Err
			}
			if errors.Is(err, tenancy.ErrDisallowedHost) {
				return ce.NewErrorResponse(http.StatusBadRequest, "Bad Request", "Invalid host header.")
			}
			if errors.Is(err, context.Canceled) {
				return ce.NewErrorResponse(http.StatusServiceUnavailable, "Service Unavailable", "Request canceled.")
			}
			return ce.NewErrorResponse(http.StatusInternalServerError, "Internal Server Error", http.StatusText(http.StatusInternalServerError))
		}
	}
}
