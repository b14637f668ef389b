package router

import (
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/chalanpro/tenant-gateway/pkg/handler"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/chalanpro/tenant-gateway/pkg/middleware"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/content-services/lecho/v3"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureEcho builds the echo server. With nil services only the ping
// route is registered and the gateway is not installed.
func ConfigureEcho(gw *tenancy.Gateway, services *handler.Services) *echo.Echo {
	return configure(gw, services, nil)
}

// ConfigureEchoWithMetrics also measures every request, including the ones
// the gateway rejects.
func ConfigureEchoWithMetrics(gw *tenancy.Gateway, services *handler.Services, metrics *instrumentation.Metrics) *echo.Echo {
	return configure(gw, services, metrics)
}

func configure(gw *tenancy.Gateway, services *handler.Services, metrics *instrumentation.Metrics) *echo.Echo {
	e := echo.New()
	// Add global middlewares
	echoLogger := lecho.From(log.Logger,
		lecho.WithTimestamp(),
		lecho.WithCaller(),
	)

	e.Use(middleware.AddRequestId)
	e.Use(lecho.Middleware(lecho.Config{
		Logger:              echoLogger,
		RequestIDHeader:     config.HeaderRequestId,
		RequestIDKey:        config.RequestIdLoggingKey,
		Skipper:             config.SkipLogging,
		RequestLatencyLevel: zerolog.WarnLevel,
		RequestLatencyLimit: 500 * time.Millisecond,
	}))
	e.Use(middleware.ExtractStatus) // Must be after lecho
	e.Use(middleware.WrapMiddlewareWithSkipper(middleware.EnforceJSONContentType, middleware.SkipMiddleware))
	e.Use(middleware.LogServerErrorRequest)
	if metrics != nil {
		e.Use(middleware.CreateMetricsMiddleware(metrics))
	}

	// Add routes
	handler.RegisterPing(e)
	if services != nil && gw != nil {
		e.Use(middleware.TenantGateway(gw, middleware.SkipMiddleware))
		e.Use(middleware.TrustedOrigin(gw.AllowList()))
		handler.RegisterRoutes(e, *services)
	}

	// Set error handler
	e.HTTPErrorHandler = config.CustomHTTPErrorHandler
	return e
}
