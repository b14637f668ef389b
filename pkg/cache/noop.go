package cache

import (
	"context"

	"github.com/chalanpro/tenant-gateway/pkg/models"
)

// A noop cache doesn't actually cache anything, every lookup goes to the database
type noOpCache struct {
}

func NewNoOpCache() *noOpCache {
	return &noOpCache{}
}

func (c *noOpCache) GetTenant(ctx context.Context, domain string) (*models.Tenant, error) {
	return nil, NotFound
}

func (c *noOpCache) SetTenant(ctx context.Context, domain string, tenant models.Tenant) error {
	return nil
}

func (c *noOpCache) DeleteTenant(ctx context.Context, domains ...string) error {
	return nil
}
