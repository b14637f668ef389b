package middleware

import (
	"errors"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/labstack/echo/v4"
)

// ExtractStatus sets the response status from a returned ErrorResponse so
// lecho logs the request at the level the error deserves. Must be registered
// after lecho.
func ExtractStatus(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}
		httpErr := new(ce.ErrorResponse)
		if errors.As(err, httpErr) {
			c.Response().Status = ce.GetGeneralResponseCode(*httpErr)
		}
		return err
	}
}
