package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const BodyDumpLimit = 1000
const BodyStoreKey = "body_backup"

// LogServerErrorRequest keeps the first BodyDumpLimit bytes of the request
// body and logs them when the handler fails with a 5xx.
func LogServerErrorRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		if c.Get(BodyStoreKey) == nil {
			storeRequestBody(c)
		}
		if err = next(c); err != nil {
			if containsServerError(err) {
				logRequestBody(c)
			}
			return err
		}
		return nil
	}
}

func containsServerError(err error) bool {
	httpError := new(ce.ErrorResponse)
	if errors.As(err, httpError) {
		for _, e := range httpError.Errors {
			if e.Status >= http.StatusInternalServerError {
				return true
			}
		}
		return false
	}
	// anything else is rendered as a generic 500
	he := new(echo.HTTPError)
	if errors.As(err, &he) {
		return he.Code >= http.StatusInternalServerError
	}
	return true
}

func logRequestBody(c echo.Context) {
	body := c.Get(BodyStoreKey)
	if body == nil {
		return
	}
	stored, ok := body.([]byte)
	if !ok {
		log.Ctx(c.Request().Context()).Error().Msg("could not read stored request body")
		return
	}
	if len(stored) == 0 {
		return
	}
	log.Ctx(c.Request().Context()).Error().
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msgf("Request body: %s", stored)
}

func storeRequestBody(c echo.Context) {
	var reqBody []byte
	if c.Request().Body != nil {
		reqBody, _ = io.ReadAll(c.Request().Body)
	}
	c.Request().Body = io.NopCloser(bytes.NewBuffer(reqBody))

	limit := min(len(reqBody), BodyDumpLimit)
	c.Set(BodyStoreKey, reqBody[:limit])
}
