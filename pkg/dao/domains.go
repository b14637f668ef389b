package dao

import (
	"context"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type domainDaoImpl struct {
	db *gorm.DB
}

func GetDomainDao(db *gorm.DB) DomainDao {
	// Return DAO instance
	return domainDaoImpl{
		db: db,
	}
}

func (dDao domainDaoImpl) lookup(ctx context.Context, where string, arg string) (*models.Tenant, error) {
	var found []models.Tenant
	result := dDao.db.WithContext(ctx).Raw(
		"SELECT "+tenantColumns+" FROM tenants JOIN domains ON domains.tenant_ref = tenants.id WHERE "+where+" ORDER BY domains.id LIMIT 1",
		arg,
	).Scan(&found)
	if result.Error != nil {
		return nil, DBErrorToApi("Could not look up domain", result.Error)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// LookupByDomain returns the tenant owning exactly this domain, active or not,
// or nil when the domain is not registered.
func (dDao domainDaoImpl) LookupByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	return dDao.lookup(ctx, "domains.domain = ?", domain)
}

// LookupByLabel returns the first active tenant with a domain containing label.
// Substring matching is loose: label "ab" also matches "abc.example.com".
// strpos is used instead of LIKE so that '_' and '%' in the label match literally.
func (dDao domainDaoImpl) LookupByLabel(ctx context.Context, label string) (*models.Tenant, error) {
	if label == "" {
		return nil, nil
	}
	return dDao.lookup(ctx, "strpos(domains.domain, ?) > 0 AND tenants.is_active", label)
}

func (dDao domainDaoImpl) ListActiveDomains(ctx context.Context) ([]string, error) {
	domains := []string{}
	result := dDao.db.WithContext(ctx).Raw(
		"SELECT domains.domain FROM domains JOIN tenants ON domains.tenant_ref = tenants.id WHERE tenants.is_active ORDER BY domains.domain",
	).Scan(&domains)
	if result.Error != nil {
		return nil, DBErrorToApi("Could not list domains", result.Error)
	}
	return domains, nil
}

func (dDao domainDaoImpl) ListForTenant(ctx context.Context, tenantRef int64) ([]models.Domain, error) {
	domains := []models.Domain{}
	result := dDao.db.WithContext(ctx).
		Where("tenant_ref = ?", tenantRef).
		Order("is_primary DESC, domain").
		Find(&domains)
	if result.Error != nil {
		return nil, DBErrorToApi("Could not list domains", result.Error)
	}
	return domains, nil
}

func (dDao domainDaoImpl) DomainTaken(ctx context.Context, domain string) (bool, error) {
	var count int64
	result := dDao.db.WithContext(ctx).Model(&models.Domain{}).Where("domain = ?", domain).Count(&count)
	if result.Error != nil {
		return false, DBErrorToApi("Could not query domains", result.Error)
	}
	return count > 0, nil
}

func (dDao domainDaoImpl) Create(ctx context.Context, domain *models.Domain) error {
	result := dDao.db.WithContext(ctx).Omit(clause.Associations).Create(domain)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return &ce.DaoError{Message: "Domain " + domain.Domain + " is already registered", Conflict: true, Err: result.Error}
		}
		return DBErrorToApi("Could not create domain", result.Error)
	}
	return nil
}

// Assign registers domain for the tenant, moving it away from any other tenant
// holding it. A primary assignment demotes the tenant's previous primary domain.
func (dDao domainDaoImpl) Assign(ctx context.Context, domain string, tenantRef int64, primary bool) (*models.Domain, error) {
	tx := dDao.db.WithContext(ctx)
	if primary {
		result := tx.Model(&models.Domain{}).
			Where("tenant_ref = ? AND domain <> ? AND is_primary", tenantRef, domain).
			Update("is_primary", false)
		if result.Error != nil {
			return nil, DBErrorToApi("Could not demote primary domain", result.Error)
		}
	}

	toAssign := models.Domain{
		Domain:    domain,
		TenantRef: tenantRef,
		IsPrimary: primary,
	}
	result := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"tenant_ref", "is_primary"}),
	}).Create(&toAssign)
	if result.Error != nil {
		return nil, DBErrorToApi("Could not assign domain", result.Error)
	}
	return &toAssign, nil
}
