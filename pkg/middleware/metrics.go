package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
)

type MetricsConfig struct {
	Skipper echo_middleware.Skipper
	Metrics *instrumentation.Metrics
}

// statusClass folds a status code into its "Nxx" class, "" when out of range.
func statusClass(status int) string {
	if status < 100 || status >= 600 {
		return ""
	}
	return strconv.Itoa(status/100) + "xx"
}

// responseStatus is the status the client will see. A returned error has
// not been written yet when the response is still uncommitted, so the code
// is taken from the error the same way the error handler will.
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	errResp := new(ce.ErrorResponse)
	if errors.As(err, errResp) {
		return ce.GetGeneralResponseCode(*errResp)
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

// MetricsMiddlewareWithConfig observes request latency by status class,
// method and route template. Registered ahead of the tenant gateway so
// rejected hosts are counted too.
func MetricsMiddlewareWithConfig(config MetricsConfig) echo.MiddlewareFunc {
	if config.Metrics == nil {
		panic("config.Metrics can not be nil")
	}
	if config.Skipper == nil {
		config.Skipper = echo_middleware.DefaultSkipper
	}
	histogram := &config.Metrics.HttpStatusHistogram
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			histogram.WithLabelValues(
				statusClass(responseStatus(c, err)),
				c.Request().Method,
				MatchedRoute(c),
			).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func CreateMetricsMiddleware(metrics *instrumentation.Metrics) echo.MiddlewareFunc {
	return MetricsMiddlewareWithConfig(MetricsConfig{Skipper: SkipMiddleware, Metrics: metrics})
}
