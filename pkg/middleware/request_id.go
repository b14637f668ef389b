package middleware

import (
	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AddRequestId makes sure every request carries an X-Request-Id. A missing id
// is generated, stored on the echo context and echoed back in the response.
func AddRequestId(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(config.HeaderRequestId)
		if id == "" {
			id = uuid.NewString()
			c.Request().Header.Set(config.HeaderRequestId, id)
		}
		c.Set(config.HeaderRequestId, id)
		c.Response().Header().Set(config.HeaderRequestId, id)
		return next(c)
	}
}
