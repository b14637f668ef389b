package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	pgxzerolog "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

const (
	MigrationsDir       = "./db/migrations"
	LatestMigrationFile = "./db/migrations.latest"
)

// GetUrl Get database config and return url
func GetUrl() string {
	dbConfig := config.Get().Database
	connectStr := fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d",
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Host,
		dbConfig.Port,
	)

	if dbConfig.CACertPath == "" {
		return connectStr + " sslmode=disable"
	}
	return connectStr + fmt.Sprintf(" sslmode=verify-full sslrootcert=%s", dbConfig.CACertPath)
}

// Connect initializes global database connection, DB. The pool is shared by
// every tenant, so the search_path of a pooled connection is only ever
// changed through schema.Router.
func Connect() error {
	conf := config.Get()
	pgxConfig, err := pgx.ParseConfig(GetUrl())
	if err != nil {
		return err
	}
	if conf.Logging.Level == "trace" {
		pgxConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzerolog.NewLogger(log.Logger),
			LogLevel: tracelog.LogLevelTrace,
		}
	}

	gormDB, err := gorm.Open(pg.New(pg.Config{Conn: stdlib.OpenDB(*pgxConfig)}), &gorm.Config{
		Logger: NewDBLogger(DBLogConfig{
			SlowThreshold:             conf.Database.SlowQueryDuration,
			LogLevel:                  config.DBLevel(conf.Logging.Level),
			IgnoreRecordNotFoundError: true,
			Logger:                    log.Logger,
		}),
	})
	if err != nil {
		return err
	}

	sqlDb, err := gormDB.DB()
	if err != nil {
		return err
	}
	sqlDb.SetMaxOpenConns(conf.Database.PoolLimit)
	if err := sqlDb.Ping(); err != nil {
		sqlDb.Close()
		return err
	}
	DB = gormDB
	return nil
}

// Close closes global database connection, DB
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func setupMigration(dbURL string) (*migrate.Migrate, error) {
	sqlDB, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not get database driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+MigrationsDir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migration instance: %w", err)
	}
	return m, nil
}

// MigrateDB runs the public schema migrations up or down. Omit steps to run all of them.
func MigrateDB(dbURL string, direction string, steps ...int) error {
	if err := checkLatestMigrationFile(); err != nil {
		return err
	}

	m, err := setupMigration(dbURL)
	if err != nil {
		return fmt.Errorf("migration setup failed: %w", err)
	}
	defer m.Close()

	var step int
	if len(steps) > 0 {
		step = steps[0]
	}

	switch direction {
	case "up":
		if step > 0 {
			err = m.Steps(step)
		} else {
			err = m.Up()
		}
	case "down":
		if step > 0 {
			err = m.Steps(-step)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug().Msg("No new migrations.")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to migrate")
		// Migrations run in a transaction, forcing back to the previous version is safe.
		previous, prevErr := previousMigrationVersion(m)
		if prevErr != nil {
			return errors.Join(err, prevErr)
		}
		if previous == 0 {
			return errors.Join(err, m.Drop())
		}
		return errors.Join(err, m.Force(previous))
	}
	return nil
}

func previousMigrationVersion(m *migrate.Migrate) (int, error) {
	versions, err := migrationVersions()
	if err != nil {
		return 0, err
	}
	current, _, _ := m.Version()
	previous := 0
	for _, v := range versions {
		if uint(v) >= current {
			break
		}
		previous = v
	}
	return previous, nil
}

func checkLatestMigrationFile() error {
	versions, err := migrationVersions()
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("no migrations found in %v", MigrationsDir)
	}
	expected, err := os.ReadFile(LatestMigrationFile)
	if err != nil {
		return err
	}
	latest := strconv.Itoa(versions[len(versions)-1])
	trimmed := strings.TrimSpace(string(expected))
	if latest != trimmed {
		return fmt.Errorf("latest migration from %v (%v) does not match found latest file (%v)", LatestMigrationFile, trimmed, latest)
	}
	return nil
}

func migrationVersions() ([]int, error) {
	names, err := filepath.Glob(filepath.Join(MigrationsDir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	versions := make([]int, 0, len(names))
	for _, name := range names {
		prefix, _, _ := strings.Cut(filepath.Base(name), "_")
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("bad migration file name %v: %w", name, err)
		}
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions, nil
}
