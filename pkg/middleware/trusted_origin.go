package middleware

import (
	"net/http"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// TrustedOrigin refuses unsafe requests whose Origin header is not one of
// the allow-list origins. Requests without an Origin header pass. Register
// it after TenantGateway so the allow-list is fresh.
func TrustedOrigin(allow *tenancy.AllowList) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isSafeMethod(c.Request().Method) {
				return next(c)
			}
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || allow.IsAllowedOrigin(origin) {
				return next(c)
			}
			log.Ctx(c.Request().Context()).Warn().Str("origin", origin).Msg("rejected request from untrusted origin")
			return ce.NewErrorResponse(http.StatusForbidden, "Forbidden", "Origin checking failed.")
		}
	}
}
