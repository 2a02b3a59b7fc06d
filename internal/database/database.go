package database

import (
	"database/sql"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/parkbay/internal/models"
)

// Connect initializes the database connection, runs migrations and seeds
// the fixed role rows.
func Connect(dsn string) *gorm.DB {
	if err := ensureDatabase(dsn); err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Printf("warning: failed to ensure uuid-ossp extension: %v", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := seedRoles(conn); err != nil {
		log.Fatalf("role seeding failed: %v", err)
	}

	return conn
}

// Migrate applies the schema for every model.
func Migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.User{},
		&models.UserRole{},
		&models.UserAccountVerification{},
		&models.PasswordResetToken{},
		&models.ParkingSpot{},
		&models.ParkingSpotAvailability{},
		&models.ParkingSpotFeature{},
		&models.ParkingSpotVehicleCapacity{},
		&models.ParkingSpotReview{},
		&models.Booking{},
		&models.ProductCategory{},
		&models.Product{},
		&models.ProductReview{},
		&models.ProductImage{},
		&models.ProductSearch{},
		&models.ProductClick{},
		&models.BusinessCategory{},
		&models.BusinessInfo{},
		&models.BusinessDocuments{},
		&models.PostCategory{},
		&models.Post{},
		&models.Feedback{},
		&models.NewsletterSubscriber{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

func seedRoles(conn *gorm.DB) error {
	roles := []models.UserRole{
		{Name: "Driver", Codename: "DRIVER"},
		{Name: "Owner", Codename: "OWNER"},
		{Name: "Farmer", Codename: "FARMER"},
	}

	for _, role := range roles {
		var existing models.UserRole
		err := conn.Where("codename = ?", role.Codename).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := conn.Create(&role).Error; err != nil {
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

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
