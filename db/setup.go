package db

import (
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDatabase(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}

	return database, nil
}

func MigrateDatabase(database *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Product{},
		&models.Order{},
	}

	migrator := database.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := database.AutoMigrate(model); err != nil {
				return errors.Wrapf(err, "migrate %T", model)
			}
		}
	}

	return nil
}
