package models

import (
	"regexp"
	"strings"

	"github.com/lib/pq"
)

const TableNameTenant = "tenants"

const (
	MaxSchemaNameLength = 63
	MaxTenantNameLength = 100
	PublicTenantID      = "public"
	PublicSchemaName    = "public"
)

var schemaNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Tenant is a customer account whose data lives in its own postgres schema.
// SchemaName must not change once the schema has been created.
type Tenant struct {
	Base
	Name        string         `gorm:"not null;unique" json:"name"`
	SchemaName  string         `gorm:"not null;unique" json:"schema_name"`
	TenantID    string         `gorm:"column:tenant_id;not null;unique" json:"tenant_id"`
	Email       *string        `json:"email,omitempty"`
	ClientType  string         `gorm:"not null;default:general" json:"client_type"`
	Address     *string        `json:"address,omitempty"`
	Preferences pq.StringArray `gorm:"type:text[]" json:"preferences"`
	OnTrial     bool           `gorm:"not null;default:true" json:"on_trial"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	Domains     []Domain       `gorm:"foreignKey:TenantRef" json:"-"`
}

func (Tenant) TableName() string {
	return TableNameTenant
}

// Validate checks the schema name against what postgres accepts as an unquoted identifier.
func (t *Tenant) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return Error{Field: "name", Message: "Name cannot be blank.", Validation: true}
	}
	if len(t.Name) > MaxTenantNameLength {
		return Error{Field: "name", Message: "Name cannot exceed 100 characters.", Validation: true}
	}
	return ValidateSchemaName(t.SchemaName)
}

func ValidateSchemaName(schemaName string) error {
	if !schemaNamePattern.MatchString(schemaName) {
		return Error{
			Field:      "schema_name",
			Message:    "Schema name may only contain lowercase letters, digits and underscores, and must start with a letter.",
			Validation: true,
		}
	}
	if len(schemaName) > MaxSchemaNameLength {
		return Error{Field: "schema_name", Message: "Schema name cannot exceed 63 characters.", Validation: true}
	}
	if IsSystemSchemaName(schemaName) {
		return Error{Field: "schema_name", Message: "Schema name is reserved by postgres.", Validation: true}
	}
	return nil
}

// Subdomain is the DNS form of the schema name.
func (t *Tenant) Subdomain() string {
	return SchemaToSubdomain(t.SchemaName)
}

// PrimaryDomain returns the primary domain among the loaded Domains, if any.
func (t *Tenant) PrimaryDomain() *Domain {
	for i := range t.Domains {
		if t.Domains[i].IsPrimary {
			return &t.Domains[i]
		}
	}
	return nil
}

func (t *Tenant) IsPublic() bool {
	return t.TenantID == PublicTenantID
}

// IsSystemSchemaName reports names postgres keeps for itself.
func IsSystemSchemaName(schemaName string) bool {
	return schemaName == "information_schema" || strings.HasPrefix(schemaName, "pg_")
}

// IsReservedSchemaName reports names no tenant may be given: system schemas
// and the shared public schema.
func IsReservedSchemaName(schemaName string) bool {
	return schemaName == PublicSchemaName || IsSystemSchemaName(schemaName)
}

func SchemaToSubdomain(schemaName string) string {
	return strings.ReplaceAll(schemaName, "_", "-")
}
