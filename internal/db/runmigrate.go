package db

import (
	"github.com/diewo77/fieldservice/internal/config"
	"github.com/sirupsen/logrus"
)

// RunMigrations connects, migrates and closes. It backs the -migrate-only
// flag and respects MIGRATIONS just like application start.
func RunMigrations(cfg *config.Config, log logrus.FieldLogger) error {
	db, err := ConnectAndMigrate(cfg.Database, cfg.App.Migrations, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	log.Info("migrations completed")
	return sqlDB.Close()
}
