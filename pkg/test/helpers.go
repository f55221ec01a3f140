package test

import (
	"log"
	"testing"

	"userdir/internal/adapter/database"
	"userdir/pkg/config"
)

// InitTestDB opens a private in-memory SQLite store with the schema applied.
func InitTestDB() *database.DB {
	db, err := database.Open(config.DatabaseConfig{
		Driver:      database.DriverSQLite,
		DSN:         ":memory:",
		Name:        "user_management_test",
		AutoMigrate: true,
	})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// CleanDB empties the users table between tests that share one store.
func CleanDB(t *testing.T, db *database.DB) {
	t.Helper()

	if _, err := db.Exec("DELETE FROM users"); err != nil {
		t.Fatalf("Failed to clean users table: %v", err)
	}
}

func CountUsers(t *testing.T, db *database.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}

	return count
}
