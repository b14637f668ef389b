package handler

import (
	"context"
	"net/http"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	"github.com/chalanpro/tenant-gateway/pkg/dao"
	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/chalanpro/tenant-gateway/pkg/schema"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type TenantHandler struct {
	DaoRegistry  dao.DaoRegistry
	PublicSchema string
}

func RegisterTenantRoutes(group *echo.Group, daoReg *dao.DaoRegistry, publicSchema string) {
	if group == nil {
		panic("group is nil")
	}
	if daoReg == nil {
		panic("daoReg is nil")
	}
	h := TenantHandler{DaoRegistry: *daoReg, PublicSchema: publicSchema}
	group.GET("/tenant/", h.currentTenant)
}

// listDomains reads through the schema session of ctx when there is one.
func (h *TenantHandler) listDomains(ctx context.Context, tenantID int64) ([]models.Domain, error) {
	if schema.Current(ctx) == "" {
		return h.DaoRegistry.Domain.ListForTenant(ctx, tenantID)
	}
	var domains []models.Domain
	err := schema.Run(ctx, func(db *gorm.DB) error {
		var err error
		domains, err = dao.GetDomainDao(db).ListForTenant(ctx, tenantID)
		return err
	})
	return domains, err
}

func (h *TenantHandler) currentTenant(c echo.Context) error {
	ctx := c.Request().Context()
	tenant := tenantOf(c, h.PublicSchema)
	if tenant == nil {
		return c.JSON(http.StatusOK, api.TenantResponse{SchemaName: h.PublicSchema})
	}

	domains, err := h.listDomains(ctx, tenant.ID)
	if err != nil {
		return ce.NewErrorResponseFromError("Could not fetch tenant domains", err)
	}
	resp := api.TenantResponse{
		Name:        tenant.Name,
		SchemaName:  tenant.SchemaName,
		TenantID:    tenant.TenantID,
		ClientType:  tenant.ClientType,
		Preferences: tenant.Preferences,
		OnTrial:     tenant.OnTrial,
	}
	for _, d := range domains {
		resp.Domains = append(resp.Domains, d.Domain)
		if d.IsPrimary {
			resp.PrimaryDomain = d.Domain
		}
	}
	return c.JSON(http.StatusOK, resp)
}
