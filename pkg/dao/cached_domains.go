package dao

import (
	"context"
	"errors"

	"github.com/chalanpro/tenant-gateway/pkg/cache"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/rs/zerolog/log"
)

// cachedDomainDao answers exact domain lookups from the shared cache before
// going to the database. Cache failures are logged and fall through.
type cachedDomainDao struct {
	DomainDao
	cache cache.Cache
}

func NewCachedDomainDao(inner DomainDao, c cache.Cache) DomainDao {
	return cachedDomainDao{DomainDao: inner, cache: c}
}

func (c cachedDomainDao) LookupByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	cached, err := c.cache.GetTenant(ctx, domain)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.NotFound) {
		log.Ctx(ctx).Warn().Err(err).Str("domain", domain).Msg("tenant cache read failed")
	}

	tenant, err := c.DomainDao.LookupByDomain(ctx, domain)
	if err != nil || tenant == nil {
		return tenant, err
	}
	if err := c.cache.SetTenant(ctx, domain, *tenant); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("domain", domain).Msg("tenant cache write failed")
	}
	return tenant, nil
}

func (c cachedDomainDao) Assign(ctx context.Context, domain string, tenantRef int64, primary bool) (*models.Domain, error) {
	assigned, err := c.DomainDao.Assign(ctx, domain, tenantRef, primary)
	if err != nil {
		return nil, err
	}
	if err := c.cache.DeleteTenant(ctx, domain); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("domain", domain).Msg("tenant cache invalidation failed")
	}
	return assigned, nil
}
