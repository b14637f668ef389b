package models

const TableNameDomain = "domains"

// Domain routes one hostname to a tenant. Domain strings are unique across
// all tenants and each tenant has at most one primary domain.
type Domain struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	Domain    string  `gorm:"not null;unique" json:"domain"`
	TenantRef int64   `gorm:"column:tenant_ref;not null" json:"-"`
	IsPrimary bool    `gorm:"not null" json:"is_primary"`
	Tenant    *Tenant `gorm:"foreignKey:TenantRef" json:"-"`
}

func (Domain) TableName() string {
	return TableNameDomain
}
