package middleware

import (
	"mime"
	"net/http"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/labstack/echo/v4"
)

const JSONMimeType = "application/json"

func enforceJSONContentTypeSkipper(c echo.Context) bool {
	req := c.Request()
	return req.Body == nil || req.Body == http.NoBody || req.ContentLength == 0 || isSafeMethod(req.Method)
}

// EnforceJSONContentType refuses request bodies that are not JSON.
func EnforceJSONContentType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if enforceJSONContentTypeSkipper(c) {
			return next(c)
		}
		mediatype, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
		if err != nil {
			return ce.NewErrorResponse(http.StatusUnsupportedMediaType, "Error parsing content type", err.Error())
		}
		if mediatype != JSONMimeType {
			return ce.NewErrorResponse(http.StatusUnsupportedMediaType, "Incorrect content type", "Content-Type must be application/json")
		}
		return next(c)
	}
}
