// Package testutil provides shared test fixtures: an isolated in-memory
// database and an in-process cache, so tests need no external services.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/kasuganosora/itemsim/cache"
	dbsqlite "github.com/kasuganosora/itemsim/db/sqlite"
	"github.com/kasuganosora/itemsim/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// SetupTestDB creates an isolated in-memory SQLite DB and runs
// AutoMigrate. Each call gets its own database, so tests can run in
// parallel. The shared-cache DSN keeps the database alive across the
// pooled connections of one *gorm.DB.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbsqlite.Open(dsn)
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates an in-process LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Config{})
	require.NoError(t, err, "SetupTestCache: New")
	return c
}
