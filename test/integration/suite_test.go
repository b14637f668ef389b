package integration

import (
	"github.com/chalanpro/tenant-gateway/pkg/db"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// Suite runs against the database from the configuration and is skipped
// when it cannot be reached.
type Suite struct {
	suite.Suite
	db *gorm.DB
}

func (s *Suite) SetupTest() {
	if db.DB == nil {
		if err := db.Connect(); err != nil {
			s.T().Skipf("database not available: %v", err)
		}
	}
	s.db = db.DB
}
