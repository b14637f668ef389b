package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	"github.com/chalanpro/tenant-gateway/pkg/dao"
	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.calls++
}

type ServiceSuite struct {
	suite.Suite
	mockDao *dao.MockDaoRegistry
	broker  *notifications.MemoryBroker
	allow   *countingInvalidator
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.mockDao = dao.GetMockDaoRegistry(s.T())
	s.broker = notifications.NewMemoryBroker()
	s.allow = &countingInvalidator{}
	s.service = NewService(s.mockDao.ToDaoRegistry(), s.broker, s.allow, Options{BaseDomain: "chalan-pro.net"})
}

func (s *ServiceSuite) TearDownTest() {
	s.broker.Close()
}

func validRequest() api.OnboardingRequest {
	return api.OnboardingRequest{
		CompanyName: "  Phoenix Electric ",
		Email:       "ops@phoenix.example.com",
		ClientType:  "electric",
		Preferences: []string{"schedule", "crews", "unknown", "schedule"},
	}
}

func (s *ServiceSuite) expectValidation(name, email string) {
	s.mockDao.Tenant.On("NameTaken", mock.Anything, name).Return(false, nil).Once()
	s.mockDao.Tenant.On("EmailTaken", mock.Anything, email).Return(false, nil).Once()
}

func (s *ServiceSuite) expectProvisioning(schema, tenantID, domain string) {
	s.mockDao.Tenant.On("SchemaNameTaken", mock.Anything, schema).Return(false, nil).Once()
	s.mockDao.Tenant.On("TenantIDTaken", mock.Anything, tenantID).Return(false, nil).Once()
	s.mockDao.Tenant.On("Create", mock.Anything, mock.AnythingOfType("*models.Tenant")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Tenant).ID = 11
	}).Return(nil).Once()
	s.mockDao.Tenant.On("CreateSchema", mock.Anything, schema).Return(nil).Once()
	s.mockDao.Domain.On("DomainTaken", mock.Anything, domain).Return(false, nil).Once()
	s.mockDao.Domain.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Domain) bool {
		return d.Domain == domain && d.TenantRef == 11 && d.IsPrimary
	})).Return(nil).Once()
	s.mockDao.Tenant.On("SchemaExists", mock.Anything, schema).Return(true, nil).Once()
}

func (s *ServiceSuite) TestCreateTenant() {
	ctx := context.Background()
	sub, err := s.broker.Subscribe(ctx, notifications.Topic("public", notifications.TenantsGroup))
	require.NoError(s.T(), err)

	s.expectValidation("Phoenix Electric", "ops@phoenix.example.com")
	s.expectProvisioning("phoenix_electric", "phoenix_electric_001", "phoenix-electric.chalan-pro.net")

	result, err := s.service.CreateTenant(ctx, validRequest())
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "Phoenix Electric", result.Tenant.Name)
	assert.Equal(s.T(), "phoenix_electric", result.Tenant.SchemaName)
	assert.Equal(s.T(), "phoenix_electric_001", result.Tenant.TenantID)
	assert.Equal(s.T(), "electric", result.Tenant.ClientType)
	assert.Equal(s.T(), []string{"schedule", "crews"}, []string(result.Tenant.Preferences))
	assert.True(s.T(), result.Tenant.OnTrial)
	assert.True(s.T(), result.Tenant.IsActive)
	assert.Equal(s.T(), "phoenix-electric.chalan-pro.net", result.Domain)
	assert.Equal(s.T(), "https://phoenix-electric.chalan-pro.net/login/", result.URL)
	assert.Equal(s.T(), 1, s.allow.calls)

	select {
	case msg := <-sub.Messages():
		assert.Equal(s.T(), notifications.TenantCreated, msg.Event)
		assert.Contains(s.T(), string(msg.Payload), "phoenix_electric")
	default:
		s.T().Fatal("tenant.created was not published")
	}
}

func (s *ServiceSuite) TestCreateTenantCollisions() {
	ctx := context.Background()
	s.expectValidation("Globo", "hi@globo.example.com")
	s.mockDao.Tenant.On("SchemaNameTaken", mock.Anything, "globo").Return(true, nil).Once()
	s.mockDao.Tenant.On("SchemaNameTaken", mock.Anything, "globo_1").Return(false, nil).Once()
	s.mockDao.Tenant.On("TenantIDTaken", mock.Anything, "globo_001").Return(true, nil).Once()
	s.mockDao.Tenant.On("TenantIDTaken", mock.Anything, "globo_002").Return(false, nil).Once()
	s.mockDao.Tenant.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockDao.Tenant.On("CreateSchema", mock.Anything, "globo_1").Return(nil).Once()
	s.mockDao.Domain.On("DomainTaken", mock.Anything, "globo-1.chalan-pro.net").Return(true, nil).Once()
	s.mockDao.Domain.On("DomainTaken", mock.Anything, "globo-11.chalan-pro.net").Return(false, nil).Once()
	s.mockDao.Domain.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockDao.Tenant.On("SchemaExists", mock.Anything, "globo_1").Return(true, nil).Once()

	result, err := s.service.CreateTenant(ctx, api.OnboardingRequest{CompanyName: "Globo", Email: "hi@globo.example.com", ClientType: "bakery"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "globo_1", result.Tenant.SchemaName)
	assert.Equal(s.T(), "globo_002", result.Tenant.TenantID)
	assert.Equal(s.T(), "general", result.Tenant.ClientType)
	assert.Equal(s.T(), "globo-11.chalan-pro.net", result.Domain)
}

func (s *ServiceSuite) TestReservedSchemaNamesAreNeverAssigned() {
	testCases := []struct {
		company  string
		email    string
		schema   string
		tenantID string
		domain   string
	}{
		{"Information Schema", "it@info.example.com", "information_schema_1", "information_schema_001", "information-schema-1.chalan-pro.net"},
		{"Public", "hello@public.example.com", "public_1", "public_001", "public-1.chalan-pro.net"},
		{"Pg Toast", "hi@toast.example.com", "tenant_pg_toast", "pg_toast_001", "tenant-pg-toast.chalan-pro.net"},
	}
	for _, tc := range testCases {
		s.expectValidation(tc.company, tc.email)
		s.expectProvisioning(tc.schema, tc.tenantID, tc.domain)

		result, err := s.service.CreateTenant(context.Background(), api.OnboardingRequest{CompanyName: tc.company, Email: tc.email})
		require.NoError(s.T(), err, tc.company)
		assert.Equal(s.T(), tc.schema, result.Tenant.SchemaName, tc.company)
	}
	s.mockDao.Tenant.AssertNotCalled(s.T(), "SchemaNameTaken", mock.Anything, "information_schema")
	s.mockDao.Tenant.AssertNotCalled(s.T(), "CreateSchema", mock.Anything, "public")
}

func (s *ServiceSuite) TestConfiguredPublicSchemaIsReserved() {
	s.service = NewService(s.mockDao.ToDaoRegistry(), s.broker, s.allow, Options{BaseDomain: "chalan-pro.net", PublicSchema: "shared"})
	s.expectValidation("Shared", "ops@shared.example.com")
	s.expectProvisioning("shared_1", "shared_001", "shared-1.chalan-pro.net")

	result, err := s.service.CreateTenant(context.Background(), api.OnboardingRequest{CompanyName: "Shared", Email: "ops@shared.example.com"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "shared_1", result.Tenant.SchemaName)
}

func (s *ServiceSuite) TestValidation() {
	ctx := context.Background()
	s.mockDao.Tenant.On("NameTaken", mock.Anything, "Phoenix").Return(true, nil).Once()
	s.mockDao.Tenant.On("EmailTaken", mock.Anything, "ops@phoenix.example.com").Return(true, nil).Once()

	_, err := s.service.CreateTenant(ctx, api.OnboardingRequest{CompanyName: "Phoenix", Email: "ops@phoenix.example.com"})
	var verr *ce.ValidationError
	require.ErrorAs(s.T(), err, &verr)
	assert.Contains(s.T(), verr.Fields, "company_name")
	assert.Contains(s.T(), verr.Fields, "email")
	assert.Equal(s.T(), 0, s.allow.calls)
}

func (s *ServiceSuite) TestValidationShortNameBadEmail() {
	err := s.service.Validate(context.Background(), &api.OnboardingRequest{CompanyName: "ab", Email: "not an email"})
	var verr *ce.ValidationError
	require.ErrorAs(s.T(), err, &verr)
	assert.Equal(s.T(), []string{"Company name must be at least 3 characters long."}, verr.Fields["company_name"])
	assert.Equal(s.T(), []string{"Enter a valid email address."}, verr.Fields["email"])

	err = s.service.Validate(context.Background(), &api.OnboardingRequest{CompanyName: "abc"})
	require.ErrorAs(s.T(), err, &verr)
	assert.Equal(s.T(), []string{"Email is required."}, verr.Fields["email"])
}

func (s *ServiceSuite) TestSchemaCreationFails() {
	ctx := context.Background()
	s.expectValidation("Phoenix Electric", "ops@phoenix.example.com")
	s.mockDao.Tenant.On("SchemaNameTaken", mock.Anything, "phoenix_electric").Return(false, nil).Once()
	s.mockDao.Tenant.On("TenantIDTaken", mock.Anything, "phoenix_electric_001").Return(false, nil).Once()
	s.mockDao.Tenant.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockDao.Tenant.On("CreateSchema", mock.Anything, "phoenix_electric").Return(errors.New("permission denied")).Once()

	_, err := s.service.CreateTenant(ctx, validRequest())
	assert.Error(s.T(), err)
	assert.Equal(s.T(), 0, s.allow.calls)
}

func (s *ServiceSuite) TestSchemaMissingAfterCreate() {
	ctx := context.Background()
	s.expectValidation("Phoenix Electric", "ops@phoenix.example.com")
	s.mockDao.Tenant.On("SchemaNameTaken", mock.Anything, "phoenix_electric").Return(false, nil).Once()
	s.mockDao.Tenant.On("TenantIDTaken", mock.Anything, "phoenix_electric_001").Return(false, nil).Once()
	s.mockDao.Tenant.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockDao.Tenant.On("CreateSchema", mock.Anything, "phoenix_electric").Return(nil).Once()
	s.mockDao.Domain.On("DomainTaken", mock.Anything, "phoenix-electric.chalan-pro.net").Return(false, nil).Once()
	s.mockDao.Domain.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockDao.Tenant.On("SchemaExists", mock.Anything, "phoenix_electric").Return(false, nil).Once()

	_, err := s.service.CreateTenant(ctx, validRequest())
	assert.Error(s.T(), err)
}

func TestLoginURL(t *testing.T) {
	prod := NewService(nil, nil, nil, Options{})
	assert.Equal(t, "https://phoenix.chalan-pro.net/login/", prod.LoginURL("phoenix.chalan-pro.net"))

	debug := NewService(nil, nil, nil, Options{Debug: true, FrontendPort: 8080})
	assert.Equal(t, "http://phoenix.chalan-pro.net:8080/login/", debug.LoginURL("phoenix.chalan-pro.net"))
}

func TestNormalize(t *testing.T) {
	req := api.OnboardingRequest{CompanyName: " Acme ", ClientType: "solar", Preferences: nil}
	Normalize(&req)
	assert.Equal(t, "Acme", req.CompanyName)
	assert.Equal(t, "solar", req.ClientType)
	assert.Equal(t, []string{}, req.Preferences)
}
