package dao

import (
	"database/sql"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DaoSuite runs daos against a gorm session backed by sqlmock.
type DaoSuite struct {
	suite.Suite
	sqlDB *sql.DB
	db    *gorm.DB
	mock  sqlmock.Sqlmock
}

var createdOn = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

var tenantColumnNames = []string{
	"id", "name", "schema_name", "tenant_id", "email",
	"client_type", "address", "preferences", "on_trial", "is_active", "created_on",
}

func tenantRow(rows *sqlmock.Rows, t models.Tenant) *sqlmock.Rows {
	return rows.AddRow(t.ID, t.Name, t.SchemaName, t.TenantID, nil, t.ClientType, nil, "{schedule,crews}", t.OnTrial, t.IsActive, createdOn)
}

var phoenix = models.Tenant{
	Base:       models.Base{ID: 1},
	Name:       "Phoenix",
	SchemaName: "phoenix",
	TenantID:   "phoenix_001",
	ClientType: "electric",
	IsActive:   true,
}

func (s *DaoSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 s.sqlDB,
		PreferSimpleProtocol: true,
	})
	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)
}

func (s *DaoSuite) TearDownTest() {
	require.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.sqlDB.Close()
}
