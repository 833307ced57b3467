// Package testutil opens the PostgreSQL database used by integration tests.
package testutil

import (
	"os"
	"testing"

	"memes/internal/db"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnvDatabaseURL names the DSN of a disposable PostgreSQL database. Tests
// that need it are skipped when it is unset.
const EnvDatabaseURL = "MEMES_TEST_DATABASE_URL"

// Postgres connects, migrates and empties every table. Tests using it must
// not run in parallel with each other.
func Postgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	gdb, err := db.Connect(dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.AutoMigrateAndIndexes(gdb))
	require.NoError(t, gdb.Exec(`truncate table user_favorites, memes, jobs restart identity`).Error)

	return gdb
}
