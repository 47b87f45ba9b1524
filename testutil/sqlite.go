// Package testutil provides an isolated in-memory database for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
)

// NewDB opens a fresh migrated SQLite database private to t.
//
// The pool is capped at one connection: SQLite locks the whole database on
// write, so transactions from concurrent goroutines queue on the pool instead
// of failing with SQLITE_BUSY.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
