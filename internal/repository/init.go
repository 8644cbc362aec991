package repository

import (
	"gorm.io/gorm"

	"github.com/customeros/payrelay/interfaces"
	"github.com/customeros/payrelay/internal/models"
)

type Repositories struct {
	AttributionDeliveryRepository interfaces.AttributionDeliveryRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		AttributionDeliveryRepository: NewAttributionDeliveryRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	return db.AutoMigrate(
		&models.AttributionDelivery{},
	)
}
