package handler

import (
	"encoding/json"
	"net/http"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	"github.com/chalanpro/tenant-gateway/pkg/dao"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/chalanpro/tenant-gateway/pkg/onboarding"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const ApiVersion = "1.0"

// Services are the collaborators the handlers need.
type Services struct {
	DaoRegistry  *dao.DaoRegistry
	Onboarding   *onboarding.Service
	Broker       notifications.Broker
	AllowList    *tenancy.AllowList
	Metrics      *instrumentation.Metrics
	PublicSchema string
}

func RegisterRoutes(engine *echo.Echo, s Services) {
	group := engine.Group("/api")
	group.GET("/", apiRoot)

	RegisterOnboardingRoutes(group, s.Onboarding, s.PublicSchema)
	RegisterTenantRoutes(group, s.DaoRegistry, s.PublicSchema)
	RegisterNotificationRoutes(group, s.Broker, s.PublicSchema)
	RegisterWebsocketRoutes(engine, &WebsocketHandler{
		Broker:       s.Broker,
		AllowList:    s.AllowList,
		Metrics:      s.Metrics,
		PublicSchema: s.PublicSchema,
	})

	data, err := json.MarshalIndent(engine.Routes(), "", "  ")
	if err == nil {
		log.Debug().Msg(string(data))
	}
}

func RegisterPing(engine *echo.Echo) {
	engine.GET("/ping", ping)
	engine.GET("/ping/", ping)
}

func ping(c echo.Context) error {
	return c.JSON(http.StatusOK, api.PingResponse{Message: "pong"})
}

func apiRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, api.RootResponse{
		Message: "Chalan Pro API",
		Version: ApiVersion,
		Endpoints: map[string]string{
			"onboarding":    "/api/onboarding/",
			"create_tenant": "/api/onboarding/create-tenant/",
			"tenant":        "/api/tenant/",
			"notifications": "/api/notifications/{group}/",
		},
	})
}
