package repository_test

import (
	"os"
	"testing"

	"github.com/mohammadpnp/household-import/internal/infrastructure/db/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}
	if err := db.AutoMigrate(&models.Household{}, &models.Client{}, &models.ImportRun{}); err != nil {
		t.Fatalf("failed schema setup: %v", err)
	}
	return db
}

func cleanupOwner(t *testing.T, db *gorm.DB, ownerID string) {
	t.Helper()

	if err := db.Exec("DELETE FROM clients WHERE household_id IN (SELECT id FROM households WHERE owner_id = ?)", ownerID).Error; err != nil {
		t.Fatalf("cleanup clients failed: %v", err)
	}
	if err := db.Exec("DELETE FROM households WHERE owner_id = ?", ownerID).Error; err != nil {
		t.Fatalf("cleanup households failed: %v", err)
	}
	if err := db.Exec("DELETE FROM import_runs WHERE owner_id = ?", ownerID).Error; err != nil {
		t.Fatalf("cleanup import_runs failed: %v", err)
	}
}
