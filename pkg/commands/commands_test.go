package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	"github.com/chalanpro/tenant-gateway/pkg/dao"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/chalanpro/tenant-gateway/pkg/onboarding"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CommandsSuite struct {
	suite.Suite
	mockDao *dao.MockDaoRegistry
	out     bytes.Buffer
}

func TestCommandsSuite(t *testing.T) {
	suite.Run(t, new(CommandsSuite))
}

func (s *CommandsSuite) SetupTest() {
	s.mockDao = dao.GetMockDaoRegistry(s.T())
	s.out.Reset()
}

func tenant(id int64, schema string, active bool) models.Tenant {
	return models.Tenant{
		Base:       models.Base{ID: id},
		Name:       schema,
		SchemaName: schema,
		TenantID:   schema + "_001",
		IsActive:   active,
	}
}

func (s *CommandsSuite) TestListTenants() {
	s.mockDao.Tenant.On("List", mock.Anything, false).Return([]models.Tenant{
		tenant(1, "globo", true),
		tenant(2, "phoenix", false),
	}, nil).Once()
	s.mockDao.Domain.On("ListForTenant", mock.Anything, int64(1)).Return([]models.Domain{
		{Domain: "globo.chalan-pro.net", IsPrimary: true},
	}, nil).Once()
	s.mockDao.Domain.On("ListForTenant", mock.Anything, int64(2)).Return([]models.Domain{}, nil).Once()

	require.NoError(s.T(), listTenants(context.Background(), s.mockDao.ToDaoRegistry(), false, &s.out))

	lines := bytes.Split(bytes.TrimSpace(s.out.Bytes()), []byte("\n"))
	require.Len(s.T(), lines, 3)
	assert.Contains(s.T(), string(lines[0]), "PRIMARY DOMAIN")
	assert.Contains(s.T(), string(lines[1]), "globo.chalan-pro.net")
	assert.Contains(s.T(), string(lines[1]), "active")
	assert.Contains(s.T(), string(lines[2]), "inactive")
}

func (s *CommandsSuite) TestDebugTenant() {
	phoenix := tenant(7, "phoenix", true)
	s.mockDao.Domain.On("LookupByDomain", mock.Anything, "phoenix.chalan-pro.net").Return(&phoenix, nil).Twice()
	s.mockDao.Tenant.On("SchemaExists", mock.Anything, "phoenix").Return(true, nil).Once()
	resolver := tenancy.NewResolver(&s.mockDao.Domain, tenancy.BreakerSettings{}, nil)

	require.NoError(s.T(), debugTenant(context.Background(), s.mockDao.ToDaoRegistry(), resolver, "Phoenix.Chalan-Pro.net:8000", &s.out))
	assert.Contains(s.T(), s.out.String(), `hostname:     "phoenix.chalan-pro.net"`)
	assert.Contains(s.T(), s.out.String(), "schema found: true")
	assert.Contains(s.T(), s.out.String(), "routes to:    phoenix (schema phoenix)")
}

func (s *CommandsSuite) TestDebugTenantUnknown() {
	s.mockDao.Domain.On("LookupByDomain", mock.Anything, "unknown.example.com").Return(nil, nil).Twice()
	s.mockDao.Domain.On("LookupByLabel", mock.Anything, "unknown").Return(nil, nil).Once()
	resolver := tenancy.NewResolver(&s.mockDao.Domain, tenancy.BreakerSettings{}, nil)

	require.NoError(s.T(), debugTenant(context.Background(), s.mockDao.ToDaoRegistry(), resolver, "unknown.example.com", &s.out))
	assert.Contains(s.T(), s.out.String(), "exact match:  none")
	assert.Contains(s.T(), s.out.String(), "routes to:    public schema")
}

func (s *CommandsSuite) TestSetupPublicDomainsCreatesTenant() {
	s.mockDao.Tenant.On("FetchByTenantID", mock.Anything, models.PublicTenantID).Return(nil, nil).Once()
	s.mockDao.Tenant.On("Create", mock.Anything, mock.MatchedBy(func(t *models.Tenant) bool {
		return t.SchemaName == "public" && t.TenantID == models.PublicTenantID
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Tenant).ID = 1
	}).Return(nil).Once()
	s.mockDao.Domain.On("Assign", mock.Anything, "chalan-pro.net", int64(1), true).Return(&models.Domain{}, nil).Once()
	s.mockDao.Domain.On("Assign", mock.Anything, "localhost", int64(1), false).Return(&models.Domain{}, nil).Once()

	err := setupPublicDomains(context.Background(), s.mockDao.ToDaoRegistry(), "public", []string{"Chalan-Pro.net", "", "localhost:8000"}, &s.out)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), s.out.String(), "Created public tenant")
}

func (s *CommandsSuite) TestSetupPublicDomainsExistingTenant() {
	public := tenant(1, "public", true)
	s.mockDao.Tenant.On("FetchByTenantID", mock.Anything, models.PublicTenantID).Return(&public, nil).Once()
	s.mockDao.Domain.On("Assign", mock.Anything, "localhost", int64(1), true).Return(&models.Domain{}, nil).Once()

	require.NoError(s.T(), setupPublicDomains(context.Background(), s.mockDao.ToDaoRegistry(), "public", []string{"localhost"}, &s.out))
	assert.NotContains(s.T(), s.out.String(), "Created public tenant")
}

func (s *CommandsSuite) TestCreateTenantValidation() {
	broker := notifications.NewMemoryBroker()
	defer broker.Close()
	service := onboarding.NewService(s.mockDao.ToDaoRegistry(), broker, nil, onboarding.Options{BaseDomain: "chalan-pro.net"})

	err := createTenant(context.Background(), service, api.OnboardingRequest{CompanyName: "ab"}, &s.out)
	assert.Error(s.T(), err)
	assert.Empty(s.T(), s.out.String())
}

func TestPrintRefreshNote(t *testing.T) {
	var out bytes.Buffer
	printRefreshNote(&out, 5*time.Minute)
	assert.Equal(t, "Running gateways admit the new domains on their next allow-list refresh (within 5m0s).\n", out.String())
}

func TestNewApp(t *testing.T) {
	app := NewApp()
	names := []string{}
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"serve", "migrate", "create-tenant", "list-tenants", "debug-tenant", "setup-public-domains"}, names)
	assert.Len(t, app.Command("migrate").Subcommands, 2)
}
