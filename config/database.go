package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/helpdesk-kit/support-desk-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDatabase establishes a connection to the PostgreSQL database,
// configures the connection pool, runs migrations and seeds the fixed roles.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure the underlying connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := MigrateDatabase(db); err != nil {
		return nil, err
	}

	log.Println("Database connection established successfully")
	return db, nil
}

// MigrateDatabase runs schema migrations and seeds the role table.
// It is shared between the production postgres setup and the sqlite test setup.
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Ticket{},
		&models.Response{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := SeedRoles(db); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	return nil
}

// SeedRoles inserts the three fixed roles if they are not present.
// The role set is closed; nothing else ever writes to this table.
func SeedRoles(db *gorm.DB) error {
	for _, name := range []models.RoleName{
		models.RoleClient,
		models.RoleSupport,
		models.RoleAdmin,
	} {
		var role models.Role
		err := db.Where("name = ?", string(name)).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&models.Role{Name: string(name)}).Error; err != nil {
			return err
		}
	}
	return nil
}

// CloseDatabase drains the connection pool. Called on graceful shutdown.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
