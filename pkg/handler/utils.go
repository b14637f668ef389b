package handler

import (
	"net/http"
	"strconv"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/labstack/echo/v4"
)

// tenantOf returns the tenant serving c, nil under public routing. Hosts of
// the public tenant row are public routing too.
func tenantOf(c echo.Context, public string) *models.Tenant {
	t := tenancy.TenantFromContext(c.Request().Context())
	if t == nil || t.IsPublic() || t.SchemaName == "" || t.SchemaName == public {
		return nil
	}
	return t
}

// publicOnly hides a route on tenant hosts.
func publicOnly(public string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tenantOf(c, public) != nil {
				return ce.NewErrorResponse(http.StatusNotFound, "Not Found", "Not Found")
			}
			return next(c)
		}
	}
}

// schemaOf returns the schema of the tenant serving c, public when none.
func schemaOf(c echo.Context, public string) string {
	if t := tenantOf(c, public); t != nil {
		return t.SchemaName
	}
	return public
}

func parseID(c echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, ce.NewErrorResponse(http.StatusBadRequest, "Invalid id", param+" must be a positive integer")
	}
	return id, nil
}
