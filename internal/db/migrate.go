package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/fieldservice/internal/config"
	"github.com/diewo77/fieldservice/internal/logging"
	"github.com/diewo77/fieldservice/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MigrationsDir is where the SQL migrations live, relative to the working directory.
var MigrationsDir = "migrations"

const connectAttempts = 10

var requiredTables = []string{"customers", "employees", "jobs", "invoices", "users", "service_links"}

// Open opens dsn with the postgres or sqlite driver. sqlite connections get
// foreign keys enforced.
func Open(dsn string, log logrus.FieldLogger, debug bool) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logging.GormLogger(log, debug)}
	if IsSQLite(dsn) {
		return gorm.Open(sqlite.Open(withForeignKeys(sqlitePath(dsn))), cfg)
	}
	return gorm.Open(postgres.Open(dsn), cfg)
}

func withForeignKeys(path string) string {
	if strings.Contains(path, "_foreign_keys") || strings.Contains(path, "_fk=") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=1"
	}
	return path + "?_foreign_keys=1"
}

// ConnectAndMigrate connects with retries, checks the connection, then brings
// the schema up to date: SQL migrations when enabled on postgres, AutoMigrate
// otherwise. Default frequencies are seeded when cfg.Seed is set.
func ConnectAndMigrate(cfg config.DatabaseConfig, sqlMigrations bool, log logrus.FieldLogger) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is empty")
	}
	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = Open(dsn, log, cfg.Debug)
		if err == nil {
			break
		}
		log.WithError(err).Warnf("database connection attempt %d/%d failed", i+1, connectAttempts)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.WithField("dsn", MaskDSN(dsn)).Info("database connected")

	if err := Migrate(db, dsn, sqlMigrations, log); err != nil {
		return nil, err
	}
	if cfg.Seed {
		if err := Seed(db); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return db, nil
}

// Migrate applies the schema to db.
func Migrate(db *gorm.DB, dsn string, sqlMigrations bool, log logrus.FieldLogger) error {
	switch {
	case sqlMigrations && !IsSQLite(dsn):
		if err := runSQLMigrations(dsn); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	default:
		if sqlMigrations {
			log.Warn("SQL migrations target postgres; using AutoMigrate for sqlite")
		}
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

var defaultFrequencies = []string{"Weekly", "Bi-Weekly", "Monthly", "One-Time"}

// Seed inserts the default frequencies that are missing. It is idempotent.
func Seed(db *gorm.DB) error {
	for _, name := range defaultFrequencies {
		var existing models.Frequency
		err := db.Where("service_frequency = ?", name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&models.Frequency{ServiceFrequency: name}).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// runSQLMigrations executes the migrations in MigrationsDir using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://"+MigrationsDir, ToURLDSN(dsn))
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
