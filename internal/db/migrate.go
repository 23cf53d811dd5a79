package db

import (
	"log"

	"product-tour-builder/internal/domain"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.Tour{},
		&domain.Screen{},
		&domain.Hotspot{},
		&domain.Step{},
		&domain.Revision{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}
