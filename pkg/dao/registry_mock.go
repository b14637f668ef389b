package dao

import (
	"testing"
)

type MockDaoRegistry struct {
	Tenant MockTenantDao
	Domain MockDomainDao
}

// ToDaoRegistry returns a registry backed by the mocks. Transaction on it runs
// the callback directly against the same mocks.
func (m *MockDaoRegistry) ToDaoRegistry() *DaoRegistry {
	r := DaoRegistry{
		Tenant: &m.Tenant,
		Domain: &m.Domain,
	}
	return &r
}

func GetMockDaoRegistry(t *testing.T) *MockDaoRegistry {
	reg := MockDaoRegistry{}
	reg.Tenant.Test(t)
	reg.Domain.Test(t)
	t.Cleanup(func() {
		reg.Tenant.AssertExpectations(t)
		reg.Domain.AssertExpectations(t)
	})
	return &reg
}
