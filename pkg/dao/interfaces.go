package dao

import (
	"context"

	"github.com/chalanpro/tenant-gateway/pkg/models"
	"gorm.io/gorm"
)

type DaoRegistry struct {
	Tenant TenantDao
	Domain DomainDao
	db     *gorm.DB
}

func GetDaoRegistry(db *gorm.DB) *DaoRegistry {
	reg := DaoRegistry{
		Tenant: tenantDaoImpl{db: db},
		Domain: domainDaoImpl{db: db},
		db:     db,
	}
	return &reg
}

// Transaction runs fn with a registry whose daos share one database transaction.
func (r *DaoRegistry) Transaction(ctx context.Context, fn func(tx *DaoRegistry) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(GetDaoRegistry(tx))
	})
}

type TenantDao interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	Fetch(ctx context.Context, id int64) (models.Tenant, error)
	FetchByTenantID(ctx context.Context, tenantID string) (*models.Tenant, error)
	List(ctx context.Context, activeOnly bool) ([]models.Tenant, error)
	NameTaken(ctx context.Context, name string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	SchemaNameTaken(ctx context.Context, schemaName string) (bool, error)
	TenantIDTaken(ctx context.Context, tenantID string) (bool, error)
	CreateSchema(ctx context.Context, schemaName string) error
	SchemaExists(ctx context.Context, schemaName string) (bool, error)
}

// DomainDao is the tenant directory: it maps registered domains to tenants.
type DomainDao interface {
	LookupByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	LookupByLabel(ctx context.Context, label string) (*models.Tenant, error)
	ListActiveDomains(ctx context.Context) ([]string, error)
	ListForTenant(ctx context.Context, tenantRef int64) ([]models.Domain, error)
	DomainTaken(ctx context.Context, domain string) (bool, error)
	Create(ctx context.Context, domain *models.Domain) error
	Assign(ctx context.Context, domain string, tenantRef int64, primary bool) (*models.Domain, error)
}
