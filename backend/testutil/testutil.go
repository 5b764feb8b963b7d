// Package testutil opens throw-away databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"studyproject/backend/config"
	"studyproject/backend/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a migrated SQLite database living in the test's temp dir.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := utils.SQLiteDSN(filepath.Join(tb.TempDir(), "test.db"))
	db, err := utils.OpenDB(sqlite.Open(dsn), gormLogger.Default.LogMode(gormLogger.Silent))
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := utils.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db handle: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Logger(tb testing.TB) *utils.Logger {
	tb.Helper()
	return utils.NewNopLogger()
}

// Config is a configuration suitable for handler tests.
func Config(tb testing.TB) *config.Config {
	tb.Helper()
	return &config.Config{
		DBDriver:      "sqlite",
		JWTSecret:     "testsecret",
		TokenTTLHours: 1,
		ServerPort:    "8080",
		MediaDir:      tb.TempDir(),
		MediaURL:      "/media",
		LogMode:       "development",
		PopularLimit:  6,
	}
}
