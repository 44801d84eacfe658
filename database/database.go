package database

import (
	"context"
	"time"

	"github.com/junaidrashid-git/shop-api/access"
	"github.com/junaidrashid-git/shop-api/config"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open connects to the configured driver with gorm logging routed through log.
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000")
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(log)})
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "database handle")
		}
		// sqlite serialises writers anyway
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table and seeds the permission groups.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	return SeedGroups(db)
}

func SeedGroups(db *gorm.DB) error {
	for _, name := range access.Groups {
		group := models.Group{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&group).Error; err != nil {
			return errors.Wrapf(err, "seed group %s", name)
		}
	}
	return nil
}

// Close releases the connection pool.
func Close(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- sqlDB.Close() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewGormLogger writes warnings and slow queries to log.
func NewGormLogger(log *logrus.Logger) logger.Interface {
	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
