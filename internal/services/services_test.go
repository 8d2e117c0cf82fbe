package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/isdelr/taskdeck-be/internal/database"
	"github.com/isdelr/taskdeck-be/internal/models"
)

var testDBCounter atomic.Int64

// newTestDB opens a uniquely named shared-cache in-memory sqlite
// database, so each test gets a fresh schema while gorm's connection
// pool still sees a single database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := database.New("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// mustRegister creates an account and returns it.
func mustRegister(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user, err := NewUserService(db).Register(context.Background(), username, "password123")
	require.NoError(t, err)
	return user
}
