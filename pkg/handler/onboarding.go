package handler

import (
	"net/http"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	"github.com/chalanpro/tenant-gateway/pkg/config"
	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/onboarding"
	"github.com/labstack/echo/v4"
)

type OnboardingHandler struct {
	Service *onboarding.Service
}

// RegisterOnboardingRoutes registers the onboarding routes, served on public
// hosts only.
func RegisterOnboardingRoutes(group *echo.Group, service *onboarding.Service, publicSchema string) {
	if group == nil {
		panic("group is nil")
	}
	if service == nil {
		panic("service is nil")
	}
	h := OnboardingHandler{Service: service}
	public := publicOnly(publicSchema)
	group.GET("/onboarding/", h.options, public)
	group.POST("/onboarding/", h.createTenant, public)
	group.POST("/onboarding/create-tenant/", h.createTenant, public)
}

func (h *OnboardingHandler) options(c echo.Context) error {
	return c.JSON(http.StatusOK, api.OnboardingOptionsResponse{
		ClientTypes: config.ClientTypes,
		Preferences: config.Preferences,
	})
}

func (h *OnboardingHandler) createTenant(c echo.Context) error {
	var req api.OnboardingRequest
	if err := c.Bind(&req); err != nil {
		return ce.NewErrorResponse(http.StatusBadRequest, "Error binding parameters", err.Error())
	}

	result, err := h.Service.CreateTenant(c.Request().Context(), req)
	if err != nil {
		return ce.NewErrorResponseFromError("Could not create tenant", err)
	}

	return c.JSON(http.StatusCreated, api.OnboardingResponse{
		Success: true,
		Message: "Tenant created successfully.",
		URL:     result.URL,
		Domain:  result.Domain,
		Tenant: api.OnboardingTenantShort{
			Name:       result.Tenant.Name,
			SchemaName: result.Tenant.SchemaName,
			TenantID:   result.Tenant.TenantID,
			ClientType: result.Tenant.ClientType,
		},
	})
}
