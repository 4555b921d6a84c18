package database

import (
	"log"
	"os"

	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/campaigns"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	// TranslateError lets the stores classify unique-constraint hits
	// (dedup ledger, payment history) as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		// identities
		&users.User{},
		&users.VerificationToken{},

		// billing / entitlement core
		&entitlement.Record{},
		&billing.ProviderEvent{},
		&billing.Payment{},

		// quota-counted resources
		&campaigns.Campaign{},
		&campaigns.Ad{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	log.Println("Connected and migrated successfully")
}
