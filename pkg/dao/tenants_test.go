package dao

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TenantSuite struct {
	DaoSuite
}

func TestTenantSuite(t *testing.T) {
	suite.Run(t, new(TenantSuite))
}

func (s *TenantSuite) newTenant() models.Tenant {
	email := "ops@phoenix.example.com"
	return models.Tenant{
		Name:        "Phoenix",
		SchemaName:  "phoenix",
		TenantID:    "phoenix_001",
		Email:       &email,
		ClientType:  "electric",
		Preferences: []string{"schedule"},
		OnTrial:     true,
		IsActive:    true,
	}
}

func (s *TenantSuite) TestCreate() {
	t := s.T()
	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tenants")).
		WithArgs("Phoenix", "phoenix", "phoenix_001", sqlmock.AnyArg(), "electric", sqlmock.AnyArg(), sqlmock.AnyArg(), true, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(42, createdOn))

	tenant := s.newTenant()
	require.NoError(t, GetTenantDao(s.db).Create(context.Background(), &tenant))
	assert.Equal(t, int64(42), tenant.ID)
	assert.Equal(t, createdOn, tenant.CreatedOn)
}

func (s *TenantSuite) TestCreateInvalidSchema() {
	tenant := s.newTenant()
	tenant.SchemaName = "Phoenix-Electric"

	err := GetTenantDao(s.db).Create(context.Background(), &tenant)
	var daoErr *ce.DaoError
	require.ErrorAs(s.T(), err, &daoErr)
	assert.True(s.T(), daoErr.BadValidation)
}

func (s *TenantSuite) TestCreateDuplicate() {
	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tenants")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tenants_schema_name_key"})

	tenant := s.newTenant()
	err := GetTenantDao(s.db).Create(context.Background(), &tenant)
	assert.True(s.T(), ce.IsConflict(err))
}

func (s *TenantSuite) TestFetch() {
	t := s.T()
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE tenants.id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(tenantRow(sqlmock.NewRows(tenantColumnNames), phoenix))

	found, err := GetTenantDao(s.db).Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Phoenix", found.Name)

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE tenants.id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(tenantColumnNames))
	_, err = GetTenantDao(s.db).Fetch(context.Background(), 2)
	assert.True(t, ce.IsNotFound(err))
}

func (s *TenantSuite) TestFetchByTenantID() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE tenants.tenant_id = $1")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(tenantColumnNames))

	found, err := GetTenantDao(s.db).FetchByTenantID(context.Background(), "public")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), found)
}

func (s *TenantSuite) TestList() {
	t := s.T()
	globo := phoenix
	globo.ID = 2
	globo.Name = "Globo Dyned"
	globo.SchemaName = "globo_dyned"
	rows := sqlmock.NewRows(tenantColumnNames)
	tenantRow(rows, globo)
	tenantRow(rows, phoenix)
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE tenants.is_active ORDER BY tenants.name")).WillReturnRows(rows)

	tenants, err := GetTenantDao(s.db).List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "globo_dyned", tenants[0].SchemaName)
}

func (s *TenantSuite) TestNameTaken() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM tenants WHERE LOWER(name) = LOWER($1))")).
		WithArgs("PHOENIX").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := GetTenantDao(s.db).NameTaken(context.Background(), "PHOENIX")
	require.NoError(s.T(), err)
	assert.True(s.T(), taken)
}

func (s *TenantSuite) TestSchemaNameTaken() {
	query := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM tenants WHERE schema_name = $1 UNION ALL SELECT 1 FROM information_schema.schemata WHERE schema_name = $2)")
	s.mock.ExpectQuery(query).
		WithArgs("phoenix_1", "phoenix_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	s.mock.ExpectQuery(query).
		WithArgs("information_schema", "information_schema").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := GetTenantDao(s.db).SchemaNameTaken(context.Background(), "phoenix_1")
	require.NoError(s.T(), err)
	assert.False(s.T(), taken)

	// a schema without a tenant row is taken too
	taken, err = GetTenantDao(s.db).SchemaNameTaken(context.Background(), "information_schema")
	require.NoError(s.T(), err)
	assert.True(s.T(), taken)
}

func (s *TenantSuite) TestCreateSchema() {
	s.mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA "phoenix"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(s.T(), GetTenantDao(s.db).CreateSchema(context.Background(), "phoenix"))

	for _, name := range []string{`phoenix"; DROP SCHEMA public; --`, "public", "information_schema", "pg_toast"} {
		err := GetTenantDao(s.db).CreateSchema(context.Background(), name)
		var daoErr *ce.DaoError
		require.ErrorAs(s.T(), err, &daoErr, name)
		assert.True(s.T(), daoErr.BadValidation, name)
	}
}

func (s *TenantSuite) TestCreateExistingSchemaFails() {
	s.mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA "phoenix"`)).
		WillReturnError(errors.New(`pq: schema "phoenix" already exists`))
	assert.Error(s.T(), GetTenantDao(s.db).CreateSchema(context.Background(), "phoenix"))
}

func (s *TenantSuite) TestSchemaExists() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM information_schema.schemata WHERE schema_name = $1")).
		WithArgs("phoenix").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := GetTenantDao(s.db).SchemaExists(context.Background(), "phoenix")
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)
}
