package dao

import (
	"context"
	"fmt"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const tenantColumns = `tenants.id, tenants.name, tenants.schema_name, tenants.tenant_id, tenants.email,
	tenants.client_type, tenants.address, tenants.preferences, tenants.on_trial, tenants.is_active, tenants.created_on`

type tenantDaoImpl struct {
	db *gorm.DB
}

func GetTenantDao(db *gorm.DB) TenantDao {
	return tenantDaoImpl{db: db}
}

func (t tenantDaoImpl) Create(ctx context.Context, tenant *models.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return &ce.DaoError{Message: err.Error(), BadValidation: true}
	}
	if tenant.Preferences == nil {
		tenant.Preferences = pq.StringArray{}
	}
	row := t.db.WithContext(ctx).Raw(`
		INSERT INTO tenants (name, schema_name, tenant_id, email, client_type, address, preferences, on_trial, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_on`,
		tenant.Name, tenant.SchemaName, tenant.TenantID, tenant.Email, tenant.ClientType,
		tenant.Address, tenant.Preferences, tenant.OnTrial, tenant.IsActive,
	).Row()
	if err := row.Scan(&tenant.ID, &tenant.CreatedOn); err != nil {
		return DBErrorToApi("Could not create tenant", err)
	}
	return nil
}

func (t tenantDaoImpl) Fetch(ctx context.Context, id int64) (models.Tenant, error) {
	var found []models.Tenant
	result := t.db.WithContext(ctx).Raw("SELECT "+tenantColumns+" FROM tenants WHERE tenants.id = ?", id).Scan(&found)
	if result.Error != nil {
		return models.Tenant{}, DBErrorToApi("Could not fetch tenant", result.Error)
	}
	if len(found) == 0 {
		return models.Tenant{}, &ce.DaoError{Message: fmt.Sprintf("Tenant %d not found", id), NotFound: true}
	}
	return found[0], nil
}

// FetchByTenantID returns nil when no tenant carries the business id.
func (t tenantDaoImpl) FetchByTenantID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	var found []models.Tenant
	result := t.db.WithContext(ctx).Raw("SELECT "+tenantColumns+" FROM tenants WHERE tenants.tenant_id = ?", tenantID).Scan(&found)
	if result.Error != nil {
		return nil, DBErrorToApi("Could not fetch tenant", result.Error)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (t tenantDaoImpl) List(ctx context.Context, activeOnly bool) ([]models.Tenant, error) {
	query := "SELECT " + tenantColumns + " FROM tenants"
	if activeOnly {
		query += " WHERE tenants.is_active"
	}
	query += " ORDER BY tenants.name"

	tenants := []models.Tenant{}
	if err := t.db.WithContext(ctx).Raw(query).Scan(&tenants).Error; err != nil {
		return nil, DBErrorToApi("Could not list tenants", err)
	}
	return tenants, nil
}

func (t tenantDaoImpl) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := t.db.WithContext(ctx).Raw("SELECT EXISTS ("+query+")", args...).Row().Scan(&exists); err != nil {
		return false, DBErrorToApi("Could not query tenants", err)
	}
	return exists, nil
}

// NameTaken compares names case insensitively.
func (t tenantDaoImpl) NameTaken(ctx context.Context, name string) (bool, error) {
	return t.exists(ctx, "SELECT 1 FROM tenants WHERE LOWER(name) = LOWER(?)", name)
}

func (t tenantDaoImpl) EmailTaken(ctx context.Context, email string) (bool, error) {
	return t.exists(ctx, "SELECT 1 FROM tenants WHERE email = ?", email)
}

// SchemaNameTaken also counts schemas that exist without a tenant row.
func (t tenantDaoImpl) SchemaNameTaken(ctx context.Context, schemaName string) (bool, error) {
	return t.exists(ctx,
		"SELECT 1 FROM tenants WHERE schema_name = ? UNION ALL SELECT 1 FROM information_schema.schemata WHERE schema_name = ?",
		schemaName, schemaName)
}

func (t tenantDaoImpl) TenantIDTaken(ctx context.Context, tenantID string) (bool, error) {
	return t.exists(ctx, "SELECT 1 FROM tenants WHERE tenant_id = ?", tenantID)
}

func (t tenantDaoImpl) CreateSchema(ctx context.Context, schemaName string) error {
	if err := models.ValidateSchemaName(schemaName); err != nil {
		return &ce.DaoError{Message: err.Error(), BadValidation: true}
	}
	if models.IsReservedSchemaName(schemaName) {
		return &ce.DaoError{Message: "Schema " + schemaName + " is reserved", BadValidation: true}
	}
	// no IF NOT EXISTS: an existing schema belongs to someone else
	if err := t.db.WithContext(ctx).Exec("CREATE SCHEMA " + pq.QuoteIdentifier(schemaName)).Error; err != nil {
		return DBErrorToApi("Could not create schema", err)
	}
	return nil
}

func (t tenantDaoImpl) SchemaExists(ctx context.Context, schemaName string) (bool, error) {
	return t.exists(ctx, "SELECT 1 FROM information_schema.schemata WHERE schema_name = ?", schemaName)
}
