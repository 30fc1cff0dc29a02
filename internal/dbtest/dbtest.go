// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brenpaiva/ecommerce-store/internal/db"
)

// Open opens a migrated in-memory SQLite database private to t and
// installs it as db.DB until the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.Migrate(testDB); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	// one connection: shared-cache SQLite reports SQLITE_LOCKED across connections
	if sqlDB, err := testDB.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	originalDB := db.DB
	db.SetTestDB(testDB)

	t.Cleanup(func() {
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
		db.SetTestDB(originalDB)
	})

	return testDB
}
