package database

import "gorm.io/gorm"

func InitPayRelayDatabase(cfg *DatabaseConfig) (*gorm.DB, error) {
	return NewConnection(cfg)
}
